package state

// HoverTracker remembers which row currently has pointer or keyboard focus.
// It only drives visual emphasis. Nothing that decides capabilities or
// menus reads it.
type HoverTracker struct {
	id string
}

// Enter marks id as hovered (pointer-enter or focus).
// It reports whether the hovered row changed.
func (h *HoverTracker) Enter(id string) bool {
	if h.id == id {
		return false
	}
	h.id = id
	return true
}

// Leave clears the hovered row (pointer-leave or blur).
// It reports whether a row was hovered before.
func (h *HoverTracker) Leave() bool {
	if h.id == "" {
		return false
	}
	h.id = ""
	return true
}

// Current returns the hovered row, if any.
func (h *HoverTracker) Current() (string, bool) {
	return h.id, h.id != ""
}

// IsEmphasized reports whether id is the hovered row.
func (h *HoverTracker) IsEmphasized(id string) bool {
	return id != "" && h.id == id
}
