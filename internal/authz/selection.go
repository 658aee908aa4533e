// Package authz decides which group actions are legal for the current
// selection of analyses.
package authz

import (
	"github.com/rescale/rescale-analyses/internal/capability"
	"github.com/rescale/rescale-analyses/internal/models"
)

// Action names passed to an OwnershipOverride.
const (
	ActionDelete = "delete"
)

// OwnershipOverride lets a deployment grant a user rights over analyses owned
// by someone else. It is consulted only for members the user does not own.
// Implementations must be side-effect free.
type OwnershipOverride interface {
	CanActFor(user, owner, action string) bool
}

// Options configures selection-level evaluation.
type Options struct {
	// Override is nil by default, meaning strict per-member ownership.
	Override OwnershipOverride
}

// SelectionFlags is the aggregate capability set for one selection.
// It is never stored; callers recompute it whenever the selection or the
// listing changes.
type SelectionFlags struct {
	Count              int
	IsInteractive      bool
	IsBatch            bool
	AllowTimeExtension bool
	AllowRelaunch      bool
	AllowDelete        bool
}

// Single reports whether exactly one analysis is selected.
func (f SelectionFlags) Single() bool {
	return f.Count == 1
}

// Evaluate aggregates capabilities across the selection.
//
// Open-session, batch-details and extend-time target a single analysis, so
// their flags are forced false unless exactly one analysis is selected.
func Evaluate(selection []models.Analysis, user string, opts Options) SelectionFlags {
	flags := SelectionFlags{
		Count:         len(selection),
		AllowRelaunch: AllowRelaunch(selection),
		AllowDelete:   AllowDelete(selection, user, opts.Override),
	}

	if flags.Single() {
		single := capability.Resolve(selection[0], user)
		flags.IsInteractive = single.IsInteractive
		flags.IsBatch = single.IsBatch
		flags.AllowTimeExtension = single.AllowTimeExtension
	}

	return flags
}

// AllowRelaunch reports whether every selected analysis may be relaunched.
// An analysis whose app was disabled by an administrator can never be
// relaunched, on its own or in bulk.
func AllowRelaunch(selection []models.Analysis) bool {
	if len(selection) == 0 {
		return false
	}
	for _, a := range selection {
		if a.AppDisabled {
			return false
		}
	}
	return true
}

// AllowDelete reports whether user may delete every selected analysis.
// A single foreign-owned member denies the whole selection unless override
// grants it.
func AllowDelete(selection []models.Analysis, user string, override OwnershipOverride) bool {
	if len(selection) == 0 {
		return false
	}
	for _, a := range selection {
		if capability.OwnedBy(a, user) {
			continue
		}
		if override == nil || !override.CanActFor(user, a.Owner, ActionDelete) {
			return false
		}
	}
	return true
}
