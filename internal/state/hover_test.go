package state

import "testing"

func TestHoverTracker(t *testing.T) {
	var h HoverTracker

	if _, ok := h.Current(); ok {
		t.Error("new tracker should have no hovered row")
	}

	if !h.Enter("a") {
		t.Error("Enter(a) should report a change")
	}
	if h.Enter("a") {
		t.Error("re-entering the same row should not report a change")
	}
	if !h.IsEmphasized("a") || h.IsEmphasized("b") {
		t.Error("only a should be emphasized")
	}

	// focus moving to another row replaces the emphasis
	h.Enter("b")
	if id, _ := h.Current(); id != "b" {
		t.Errorf("Current() = %q, want b", id)
	}

	if !h.Leave() {
		t.Error("Leave should report a change")
	}
	if h.Leave() {
		t.Error("second Leave should be a no-op")
	}
	if h.IsEmphasized("") {
		t.Error("empty id is never emphasized")
	}
}
