package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rescale/rescale-analyses/internal/events"
	"github.com/rescale/rescale-analyses/internal/models"
)

func sampleItems() []models.Analysis {
	return []models.Analysis{
		{ID: "A", Name: "wrf", StartDate: at(1), Status: models.StatusCompleted},
		{ID: "B", Name: "cfd", StartDate: at(3), Status: models.StatusRunning},
		{ID: "C", Name: "mesh", StartDate: at(2), Status: models.StatusSubmitted},
	}
}

func TestNewAnalysisListState(t *testing.T) {
	s := NewAnalysisListState(SortState{}, nil)

	if s.GetSort() != DefaultSort {
		t.Errorf("GetSort() = %v, want %v", s.GetSort(), DefaultSort)
	}
	if s.Count() != 0 {
		t.Error("Initial items should be empty")
	}
}

func TestAnalysisListStateSetItemsSorts(t *testing.T) {
	s := NewAnalysisListState(SortState{ColumnStartDate, Desc}, nil)
	s.SetItems(sampleItems())

	got := ids(s.GetItems())
	want := []string{"B", "C", "A"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
}

func TestAnalysisListStateReconcilesOnRefresh(t *testing.T) {
	bus := events.NewEventBus(100)
	defer bus.Close()
	selCh := bus.Subscribe(EventSelectionChanged)

	s := NewAnalysisListState(DefaultSort, bus)
	s.SetItems(sampleItems())
	s.ToggleSelectAll()
	<-selCh

	s.SetItems([]models.Analysis{{ID: "B"}, {ID: "D"}})

	if got := s.GetSelectedIDs(); !reflect.DeepEqual(got, []string{"B"}) {
		t.Errorf("selection = %v, want [B]", got)
	}

	select {
	case e := <-selCh:
		ev := e.(*SelectionChangedEvent)
		if !reflect.DeepEqual(ev.Dropped, []string{"A", "C"}) {
			t.Errorf("Dropped = %v, want [A C]", ev.Dropped)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for selection event")
	}
}

func TestAnalysisListStateIgnoresInputWhileLoading(t *testing.T) {
	s := NewAnalysisListState(DefaultSort, nil)
	s.SetItems(sampleItems())
	s.SetLoading(true)

	if s.ToggleSelect("A") {
		t.Error("ToggleSelect should be ignored while loading")
	}
	if s.ToggleSelectAll() {
		t.Error("ToggleSelectAll should be ignored while loading")
	}
	if s.RequestSort(ColumnName) {
		t.Error("RequestSort should be ignored while loading")
	}
	if s.GetSort() != DefaultSort || len(s.GetSelectedIDs()) != 0 {
		t.Error("state changed while loading")
	}

	s.SetItems(sampleItems())
	if s.IsLoading() {
		t.Error("SetItems should clear loading")
	}
	if !s.ToggleSelect("A") {
		t.Error("ToggleSelect should work after loading completes")
	}
}

func TestAnalysisListStateRequestSort(t *testing.T) {
	bus := events.NewEventBus(100)
	defer bus.Close()
	sortCh := bus.Subscribe(EventSortChanged)

	s := NewAnalysisListState(SortState{ColumnStartDate, Desc}, bus)
	s.SetItems(sampleItems())

	s.RequestSort(ColumnName)
	if got := ids(s.GetItems()); !reflect.DeepEqual(got, []string{"B", "C", "A"}) {
		t.Errorf("name asc = %v", got)
	}
	s.RequestSort(ColumnName)
	if got := ids(s.GetItems()); !reflect.DeepEqual(got, []string{"A", "C", "B"}) {
		t.Errorf("name desc = %v", got)
	}

	for _, want := range []SortState{{ColumnName, Asc}, {ColumnName, Desc}} {
		select {
		case e := <-sortCh:
			if got := e.(*SortChangedEvent).Sort; got != want {
				t.Errorf("SortChangedEvent = %v, want %v", got, want)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("Timeout waiting for sort event")
		}
	}
}

func TestAnalysisListStateSelectedItemsInDisplayOrder(t *testing.T) {
	s := NewAnalysisListState(SortState{ColumnStartDate, Desc}, nil)
	s.SetItems(sampleItems())
	s.ToggleSelect("A")
	s.ToggleSelect("B")

	if got := ids(s.SelectedItems()); !reflect.DeepEqual(got, []string{"B", "A"}) {
		t.Errorf("SelectedItems() = %v, want [B A]", got)
	}
	if s.SelectAllState() != CheckPartial {
		t.Errorf("SelectAllState() = %v, want partial", s.SelectAllState())
	}

	s.ClearSelection()
	if s.SelectAllState() != CheckNone {
		t.Errorf("SelectAllState() after clear = %v, want none", s.SelectAllState())
	}
}

func TestAnalysisListStateError(t *testing.T) {
	bus := events.NewEventBus(100)
	defer bus.Close()
	errCh := bus.Subscribe(EventAnalysisListError)

	s := NewAnalysisListState(DefaultSort, bus)
	s.SetLoading(true)
	fetchErr := errors.New("listing unavailable")
	s.SetError(fetchErr)

	if s.IsLoading() {
		t.Error("SetError should clear loading")
	}
	if !errors.Is(s.GetError(), fetchErr) {
		t.Errorf("GetError() = %v", s.GetError())
	}

	select {
	case e := <-errCh:
		if e.(*AnalysisListErrorEvent).Error != fetchErr {
			t.Error("error event carries wrong error")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for error event")
	}

	s.SetItems(sampleItems())
	if s.GetError() != nil {
		t.Error("SetItems should clear the error")
	}
}

func TestAnalysisListStateHover(t *testing.T) {
	bus := events.NewEventBus(100)
	defer bus.Close()
	hoverCh := bus.Subscribe(EventHoverChanged)

	s := NewAnalysisListState(DefaultSort, bus)
	s.SetItems(sampleItems())

	s.HoverEnter("A")
	s.HoverEnter("A")
	s.HoverLeave()

	for _, want := range []string{"A", ""} {
		select {
		case e := <-hoverCh:
			if got := e.(*HoverChangedEvent).RowID; got != want {
				t.Errorf("HoverChangedEvent.RowID = %q, want %q", got, want)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("Timeout waiting for hover event")
		}
	}

	select {
	case <-hoverCh:
		t.Error("duplicate hover enter should not publish")
	default:
	}

	// hover on a row that disappears is cleared on refresh
	s.HoverEnter("C")
	s.SetItems([]models.Analysis{{ID: "A"}})
	if _, ok := s.Hovered(); ok {
		t.Error("hover should be cleared when the row leaves the listing")
	}
}
