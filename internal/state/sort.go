package state

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rescale/rescale-analyses/internal/models"
)

// ErrUnsortableColumn is returned for columns the listing cannot be sorted by.
var ErrUnsortableColumn = errors.New("column is not sortable")

// Column is a sortable listing column.
type Column string

const (
	ColumnName      Column = "name"
	ColumnStartDate Column = "startdate"
	ColumnEndDate   Column = "enddate"
	ColumnStatus    Column = "status"
)

// ParseColumn maps a column key to a sortable Column.
// Display-only columns such as owner, app or actions are rejected.
func ParseColumn(s string) (Column, error) {
	switch c := Column(strings.ToLower(strings.TrimSpace(s))); c {
	case ColumnName, ColumnStartDate, ColumnEndDate, ColumnStatus:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsortableColumn, s)
}

// Direction is the sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts "asc"/"ascending" and "desc"/"descending".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Asc, nil
	case "desc", "descending":
		return Desc, nil
	}
	return "", fmt.Errorf("invalid sort direction %q", s)
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// SortState is the listing's current (column, direction) pair.
type SortState struct {
	Column    Column
	Direction Direction
}

// DefaultSort is the order used when nothing is configured: newest first.
var DefaultSort = SortState{Column: ColumnStartDate, Direction: Desc}

// Request returns the state after the user asks to sort by col.
// Re-requesting the active column flips the direction; a different column
// starts ascending.
func (s SortState) Request(col Column) SortState {
	if col == s.Column {
		return SortState{Column: col, Direction: s.Direction.Flip()}
	}
	return SortState{Column: col, Direction: Asc}
}

func (s SortState) String() string {
	return string(s.Column) + " " + string(s.Direction)
}

// statusRank orders statuses by lifecycle rather than alphabetically.
var statusRank = map[models.Status]int{
	models.StatusSubmitted: 0,
	models.StatusRunning:   1,
	models.StatusCompleted: 2,
	models.StatusFailed:    3,
	models.StatusCanceled:  4,
}

func rankOf(st models.Status) int {
	if r, ok := statusRank[st]; ok {
		return r
	}
	return len(statusRank)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Compare orders a before b (negative), after b (positive) or treats them as
// equal (zero) under the current sort state. Missing dates always sort last,
// whichever direction is active.
func (s SortState) Compare(a, b models.Analysis) int {
	var c int
	switch s.Column {
	case ColumnStartDate, ColumnEndDate:
		ta, tb := a.StartDate, b.StartDate
		if s.Column == ColumnEndDate {
			ta, tb = a.EndDate, b.EndDate
		}
		switch {
		case !ta.Valid() && !tb.Valid():
			return 0
		case !ta.Valid():
			return 1
		case !tb.Valid():
			return -1
		}
		c = ta.Compare(tb.Time)
	case ColumnStatus:
		c = cmpInt(rankOf(a.Status), rankOf(b.Status))
	default:
		c = strings.Compare(a.Name, b.Name)
	}
	if s.Direction == Desc {
		return -c
	}
	return c
}

// Apply returns a stably sorted copy of items. Ties keep their relative
// order from the input.
func (s SortState) Apply(items []models.Analysis) []models.Analysis {
	sorted := make([]models.Analysis, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return s.Compare(sorted[i], sorted[j]) < 0
	})
	return sorted
}
