package state

import (
	"sync"

	"github.com/rescale/rescale-analyses/internal/events"
	"github.com/rescale/rescale-analyses/internal/models"
)

// AnalysisListState is an observable analyses listing container.
// It holds the current page, the user's selection, sort order and hover
// state, and publishes events on changes. Thread-safe for concurrent access.
type AnalysisListState struct {
	// Event bus for publishing changes; may be nil
	eventBus *events.EventBus

	items     []models.Analysis
	selection *SelectionSet
	sort      SortState
	hover     HoverTracker
	loading   bool
	lastError error

	mu sync.RWMutex
}

// NewAnalysisListState creates an empty listing state sorted by initial.
func NewAnalysisListState(initial SortState, eventBus *events.EventBus) *AnalysisListState {
	if initial.Column == "" {
		initial.Column = DefaultSort.Column
	}
	if initial.Direction == "" {
		initial.Direction = DefaultSort.Direction
	}
	return &AnalysisListState{
		eventBus:  eventBus,
		items:     make([]models.Analysis, 0),
		selection: NewSelectionSet(),
		sort:      initial,
	}
}

func (s *AnalysisListState) publish(e events.Event) {
	if s.eventBus != nil {
		s.eventBus.Publish(e)
	}
}

// GetItems returns a copy of the current items in display order.
func (s *AnalysisListState) GetItems() []models.Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.itemsCopyLocked()
}

func (s *AnalysisListState) itemsCopyLocked() []models.Analysis {
	result := make([]models.Analysis, len(s.items))
	copy(result, s.items)
	return result
}

func (s *AnalysisListState) idsLocked() []string {
	ids := make([]string, len(s.items))
	for i, a := range s.items {
		ids[i] = a.ID
	}
	return ids
}

// SetItems replaces the listing, applies the current sort and drops any
// selected ids that are no longer listed. Loading and error are cleared.
func (s *AnalysisListState) SetItems(items []models.Analysis) {
	s.mu.Lock()
	s.items = s.sort.Apply(items)
	s.loading = false
	s.lastError = nil
	dropped := s.selection.Reconcile(s.idsLocked())
	if id, ok := s.hover.Current(); ok && !s.containsLocked(id) {
		s.hover.Leave()
	}
	itemsCopy := s.itemsCopyLocked()
	selectedIDs := s.selection.IDs()
	s.mu.Unlock()

	s.publish(NewAnalysisListChangedEvent(itemsCopy))
	if len(dropped) > 0 {
		s.publish(NewSelectionChangedEvent(selectedIDs, dropped))
	}
}

func (s *AnalysisListState) containsLocked(id string) bool {
	for _, a := range s.items {
		if a.ID == id {
			return true
		}
	}
	return false
}

// SetLoading marks the list as loading and publishes an event.
func (s *AnalysisListState) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()

	s.publish(NewAnalysisListLoadingEvent(loading))
}

// IsLoading returns whether the list is currently loading.
func (s *AnalysisListState) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// SetError records a failed fetch. The previous rows are kept in memory but
// readers must not present them while an error is set.
func (s *AnalysisListState) SetError(err error) {
	s.mu.Lock()
	s.lastError = err
	s.loading = false
	s.mu.Unlock()

	if err != nil {
		s.publish(NewAnalysisListErrorEvent(err))
	}
}

// GetError returns the last error.
func (s *AnalysisListState) GetError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// RequestSort applies a user sort request to col and re-sorts the listing.
// Requests are ignored while loading.
func (s *AnalysisListState) RequestSort(col Column) bool {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return false
	}
	s.sort = s.sort.Request(col)
	s.items = s.sort.Apply(s.items)
	current := s.sort
	itemsCopy := s.itemsCopyLocked()
	s.mu.Unlock()

	s.publish(NewSortChangedEvent(current))
	s.publish(NewAnalysisListChangedEvent(itemsCopy))
	return true
}

// GetSort returns the current sort state.
func (s *AnalysisListState) GetSort() SortState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sort
}

// ToggleSelect flips one row's selection. Ignored while loading.
func (s *AnalysisListState) ToggleSelect(id string) bool {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return false
	}
	s.selection.ToggleOne(id)
	selectedIDs := s.selection.IDs()
	s.mu.Unlock()

	s.publish(NewSelectionChangedEvent(selectedIDs, nil))
	return true
}

// ToggleSelectAll applies the header checkbox to the current page.
// Ignored while loading.
func (s *AnalysisListState) ToggleSelectAll() bool {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return false
	}
	s.selection.ToggleAll(s.idsLocked())
	selectedIDs := s.selection.IDs()
	s.mu.Unlock()

	s.publish(NewSelectionChangedEvent(selectedIDs, nil))
	return true
}

// ClearSelection clears all selections.
func (s *AnalysisListState) ClearSelection() {
	s.mu.Lock()
	s.selection.Clear()
	s.mu.Unlock()

	s.publish(NewSelectionChangedEvent([]string{}, nil))
}

// IsSelected returns whether an item is selected.
func (s *AnalysisListState) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection.Contains(id)
}

// GetSelectedIDs returns the selected ids, sorted.
func (s *AnalysisListState) GetSelectedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection.IDs()
}

// SelectedItems returns the selected analyses in display order.
func (s *AnalysisListState) SelectedItems() []models.Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Analysis, 0, s.selection.Len())
	for _, a := range s.items {
		if s.selection.Contains(a.ID) {
			result = append(result, a)
		}
	}
	return result
}

// SelectAllState derives the header checkbox for the current page.
func (s *AnalysisListState) SelectAllState() CheckState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CheckStateOf(s.selection, s.idsLocked())
}

// HoverEnter emphasizes a row on pointer-enter or focus.
func (s *AnalysisListState) HoverEnter(id string) {
	s.mu.Lock()
	changed := s.hover.Enter(id)
	s.mu.Unlock()

	if changed {
		s.publish(NewHoverChangedEvent(id))
	}
}

// HoverLeave clears emphasis on pointer-leave or blur.
func (s *AnalysisListState) HoverLeave() {
	s.mu.Lock()
	changed := s.hover.Leave()
	s.mu.Unlock()

	if changed {
		s.publish(NewHoverChangedEvent(""))
	}
}

// Hovered returns the emphasized row, if any.
func (s *AnalysisListState) Hovered() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hover.Current()
}

// FindByID finds an item by ID.
func (s *AnalysisListState) FindByID(id string) (models.Analysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.items {
		if a.ID == id {
			return a, true
		}
	}
	return models.Analysis{}, false
}

// Count returns the number of items.
func (s *AnalysisListState) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
