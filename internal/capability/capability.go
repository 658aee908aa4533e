// Package capability derives per-analysis capability flags.
//
// Every function here is pure and total: a partially populated Analysis never
// causes a panic, it simply denies whatever capability depends on the missing
// field.
package capability

import (
	"strings"

	"github.com/rescale/rescale-analyses/internal/models"
)

// Flags holds the per-analysis capabilities.
type Flags struct {
	IsInteractive      bool
	IsBatch            bool
	AllowTimeExtension bool
}

// Resolve computes all per-analysis flags for the acting user.
func Resolve(a models.Analysis, user string) Flags {
	return Flags{
		IsInteractive:      IsInteractive(a),
		IsBatch:            IsBatch(a),
		AllowTimeExtension: AllowTimeExtension(a, user),
	}
}

// IsInteractive reports whether the analysis has a live VICE session that
// can be opened: it must be submitted or running and expose at least one URL.
func IsInteractive(a models.Analysis) bool {
	if !a.HasInteractiveURLs() {
		return false
	}
	return a.Status == models.StatusSubmitted || a.Status == models.StatusRunning
}

// IsBatch reports whether the analysis is a high-throughput container.
func IsBatch(a models.Analysis) bool {
	return a.Batch
}

// AllowTimeExtension reports whether user may extend the session time limit.
// Only the owner of a running interactive analysis may do so; there is no
// administrative override for this capability.
func AllowTimeExtension(a models.Analysis, user string) bool {
	return a.HasInteractiveURLs() &&
		a.Status == models.StatusRunning &&
		OwnedBy(a, user)
}

// OwnedBy reports whether user owns the analysis. Both sides are normalized
// before comparison; an empty identity on either side never matches.
func OwnedBy(a models.Analysis, user string) bool {
	owner := NormalizeUsername(a.Owner)
	if owner == "" {
		return false
	}
	return owner == NormalizeUsername(user)
}

// NormalizeUsername strips a realm suffix ("alice@REALM" -> "alice").
func NormalizeUsername(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return name
}

// PrimaryURL returns the first interactive URL, or "" when there is none.
func PrimaryURL(a models.Analysis) string {
	if !a.HasInteractiveURLs() {
		return ""
	}
	return a.InteractiveURLs[0]
}
