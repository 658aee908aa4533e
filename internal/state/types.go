// Package state provides observable state containers for the analyses listing.
// These containers emit events when state changes, allowing any frontend
// to subscribe and update its view accordingly.
package state

import (
	"github.com/rescale/rescale-analyses/internal/events"
	"github.com/rescale/rescale-analyses/internal/models"
)

// State event types
const (
	EventAnalysisListChanged events.EventType = "analysis_list_changed"
	EventAnalysisListLoading events.EventType = "analysis_list_loading"
	EventAnalysisListError   events.EventType = "analysis_list_error"
	EventSelectionChanged    events.EventType = "selection_changed"
	EventSortChanged         events.EventType = "sort_changed"
	EventHoverChanged        events.EventType = "hover_changed"
)

// AnalysisListChangedEvent is published when the listing or its order changes.
type AnalysisListChangedEvent struct {
	events.BaseEvent
	Items []models.Analysis
}

// AnalysisListLoadingEvent is published when a fetch starts or stops.
type AnalysisListLoadingEvent struct {
	events.BaseEvent
	Loading bool
}

// AnalysisListErrorEvent is published when a listing fetch fails.
type AnalysisListErrorEvent struct {
	events.BaseEvent
	Error error
}

// SelectionChangedEvent is published when the selection changes.
// Dropped lists ids removed by reconciliation after a refresh.
type SelectionChangedEvent struct {
	events.BaseEvent
	SelectedIDs []string
	Dropped     []string
}

// SortChangedEvent is published when the sort order changes.
type SortChangedEvent struct {
	events.BaseEvent
	Sort SortState
}

// HoverChangedEvent is published when the emphasized row changes.
// RowID is empty when no row is hovered.
type HoverChangedEvent struct {
	events.BaseEvent
	RowID string
}

// NewAnalysisListChangedEvent creates a new AnalysisListChangedEvent.
func NewAnalysisListChangedEvent(items []models.Analysis) *AnalysisListChangedEvent {
	return &AnalysisListChangedEvent{
		BaseEvent: events.NewBaseEvent(EventAnalysisListChanged),
		Items:     items,
	}
}

// NewAnalysisListLoadingEvent creates a new AnalysisListLoadingEvent.
func NewAnalysisListLoadingEvent(loading bool) *AnalysisListLoadingEvent {
	return &AnalysisListLoadingEvent{
		BaseEvent: events.NewBaseEvent(EventAnalysisListLoading),
		Loading:   loading,
	}
}

// NewAnalysisListErrorEvent creates a new AnalysisListErrorEvent.
func NewAnalysisListErrorEvent(err error) *AnalysisListErrorEvent {
	return &AnalysisListErrorEvent{
		BaseEvent: events.NewBaseEvent(EventAnalysisListError),
		Error:     err,
	}
}

// NewSelectionChangedEvent creates a new SelectionChangedEvent.
func NewSelectionChangedEvent(selectedIDs, dropped []string) *SelectionChangedEvent {
	return &SelectionChangedEvent{
		BaseEvent:   events.NewBaseEvent(EventSelectionChanged),
		SelectedIDs: selectedIDs,
		Dropped:     dropped,
	}
}

// NewSortChangedEvent creates a new SortChangedEvent.
func NewSortChangedEvent(s SortState) *SortChangedEvent {
	return &SortChangedEvent{
		BaseEvent: events.NewBaseEvent(EventSortChanged),
		Sort:      s,
	}
}

// NewHoverChangedEvent creates a new HoverChangedEvent.
func NewHoverChangedEvent(rowID string) *HoverChangedEvent {
	return &HoverChangedEvent{
		BaseEvent: events.NewBaseEvent(EventHoverChanged),
		RowID:     rowID,
	}
}
