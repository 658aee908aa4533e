package state

import "sort"

// SelectionSet is the set of analysis IDs the user has checked.
// It is not safe for concurrent use; AnalysisListState guards it.
type SelectionSet struct {
	ids map[string]struct{}
}

// NewSelectionSet creates a selection holding ids.
func NewSelectionSet(ids ...string) *SelectionSet {
	s := &SelectionSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// ToggleOne flips membership of a single id.
func (s *SelectionSet) ToggleOne(id string) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// ToggleAll deselects every id on the page when all of them are already
// selected, and selects all of them otherwise. An empty page is a no-op.
func (s *SelectionSet) ToggleAll(pageIDs []string) {
	if len(pageIDs) == 0 {
		return
	}
	if CheckStateOf(s, pageIDs) == CheckAll {
		for _, id := range pageIDs {
			delete(s.ids, id)
		}
		return
	}
	for _, id := range pageIDs {
		s.ids[id] = struct{}{}
	}
}

// Clear empties the selection.
func (s *SelectionSet) Clear() {
	s.ids = make(map[string]struct{})
}

// Contains reports whether id is selected.
func (s *SelectionSet) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected ids.
func (s *SelectionSet) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids in sorted order.
func (s *SelectionSet) IDs() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Reconcile drops every selected id that is not in listingIDs and returns
// the dropped ids, sorted.
func (s *SelectionSet) Reconcile(listingIDs []string) []string {
	present := make(map[string]struct{}, len(listingIDs))
	for _, id := range listingIDs {
		present[id] = struct{}{}
	}
	var dropped []string
	for id := range s.ids {
		if _, ok := present[id]; !ok {
			dropped = append(dropped, id)
			delete(s.ids, id)
		}
	}
	sort.Strings(dropped)
	return dropped
}

// CheckState is the derived state of a page's "select all" checkbox.
type CheckState int

const (
	CheckNone CheckState = iota
	CheckPartial
	CheckAll
)

func (c CheckState) String() string {
	switch c {
	case CheckPartial:
		return "partial"
	case CheckAll:
		return "all"
	}
	return "none"
}

// CheckStateOf derives the header checkbox from selection ∩ pageIDs.
func CheckStateOf(s *SelectionSet, pageIDs []string) CheckState {
	if len(pageIDs) == 0 {
		return CheckNone
	}
	n := 0
	for _, id := range pageIDs {
		if s.Contains(id) {
			n++
		}
	}
	switch {
	case n == 0:
		return CheckNone
	case n == len(pageIDs):
		return CheckAll
	}
	return CheckPartial
}
