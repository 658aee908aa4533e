// Package actions builds the ordered list of actions exposed for a row or a
// selection. It separates "what is legal" from how it is displayed: callers
// get descriptors, never markup.
package actions

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAction is returned by ParseID for unrecognized action keys.
var ErrUnknownAction = errors.New("unknown action")

// ErrUnknownViewport is returned by ParseViewport for unrecognized values.
var ErrUnknownViewport = errors.New("unknown viewport")

// ID identifies an action.
type ID int

const (
	Details ID = iota
	GoOutputFolder
	Relaunch
	BatchDetails
	GoToVice
	ExtendTime
	ViewLogs
	Delete
	Filter
	RequestHelp
)

var idNames = map[ID]string{
	Details:        "details",
	GoOutputFolder: "go-output-folder",
	Relaunch:       "relaunch",
	BatchDetails:   "batch-details",
	GoToVice:       "go-to-vice",
	ExtendTime:     "extend-time",
	ViewLogs:       "view-logs",
	Delete:         "delete",
	Filter:         "filter",
	RequestHelp:    "request-help",
}

func (id ID) String() string {
	if name, ok := idNames[id]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(id))
}

// ParseID maps a key such as "go-to-vice" back to its ID.
func ParseID(s string) (ID, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for id, name := range idNames {
		if name == key {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Targeting describes what an action operates on once invoked.
type Targeting int

const (
	// TargetNone actions do not take analyses (details panel, filter).
	TargetNone Targeting = iota
	// TargetSingle actions operate on exactly one analysis.
	TargetSingle
	// TargetMulti actions operate on the whole selection.
	TargetMulti
)

func (t Targeting) String() string {
	switch t {
	case TargetSingle:
		return "single"
	case TargetMulti:
		return "multi"
	default:
		return "none"
	}
}

// Descriptor is one exposed action.
type Descriptor struct {
	ID     ID
	Target Targeting
}

// Viewport is the externally supplied layout class.
type Viewport int

const (
	Wide Viewport = iota
	Narrow
)

func (v Viewport) String() string {
	if v == Narrow {
		return "narrow"
	}
	return "wide"
}

// ParseViewport parses "wide" or "narrow".
func ParseViewport(s string) (Viewport, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wide", "":
		return Wide, nil
	case "narrow":
		return Narrow, nil
	default:
		return Wide, fmt.Errorf("%w: %q", ErrUnknownViewport, s)
	}
}

// ViewportForWidth classifies a display width. Widths below narrowBelow are
// narrow; a non-positive width is treated as wide.
func ViewportForWidth(width, narrowBelow int) Viewport {
	if width > 0 && width < narrowBelow {
		return Narrow
	}
	return Wide
}

// Contains reports whether id is present in menu.
func Contains(menu []Descriptor, id ID) bool {
	for _, d := range menu {
		if d.ID == id {
			return true
		}
	}
	return false
}

// IDs returns the action IDs of menu in order.
func IDs(menu []Descriptor) []ID {
	ids := make([]ID, 0, len(menu))
	for _, d := range menu {
		ids = append(ids, d.ID)
	}
	return ids
}
