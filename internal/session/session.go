// Package session ties the listing state, capability resolution,
// authorization and menu building together for one user's view of the
// analyses listing, and dispatches authorized actions to collaborators.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/rescale/rescale-analyses/internal/actions"
	"github.com/rescale/rescale-analyses/internal/authz"
	"github.com/rescale/rescale-analyses/internal/capability"
	"github.com/rescale/rescale-analyses/internal/logging"
	"github.com/rescale/rescale-analyses/internal/models"
	"github.com/rescale/rescale-analyses/internal/state"
)

// ErrActionNotAvailable is returned when an action is not in the freshly
// built menu for the current selection or row.
var ErrActionNotAvailable = errors.New("action not available")

// Options configures a Session.
type Options struct {
	User     string
	State    *state.AnalysisListState
	Handlers Handlers
	// Override is consulted for foreign-owned analyses; nil means strict
	// per-member ownership.
	Override       authz.OwnershipOverride
	DetailsEnabled bool
	Logger         *logging.Logger
}

// Session is one user's interactive view of the listing.
type Session struct {
	user           string
	state          *state.AnalysisListState
	handlers       Handlers
	authzOpts      authz.Options
	detailsEnabled bool
	logger         *logging.Logger
}

// New creates a session. A nil State gets an empty listing with the
// default sort; nil Handlers and Logger become no-ops.
func New(opts Options) *Session {
	st := opts.State
	if st == nil {
		st = state.NewAnalysisListState(state.DefaultSort, nil)
	}
	handlers := opts.Handlers
	if handlers == nil {
		handlers = NopHandlers{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Session{
		user:           opts.User,
		state:          st,
		handlers:       handlers,
		authzOpts:      authz.Options{Override: opts.Override},
		detailsEnabled: opts.DetailsEnabled,
		logger:         logger.Component("session"),
	}
}

// State returns the listing state the session drives.
func (s *Session) State() *state.AnalysisListState {
	return s.state
}

// User returns the acting user.
func (s *Session) User() string {
	return s.user
}

// Row is one listing row ready for presentation.
type Row struct {
	Analysis   models.Analysis
	Flags      capability.Flags
	Selected   bool
	Emphasized bool
	Actions    []actions.Descriptor
}

// View is a snapshot of everything the presentation layer renders.
// When Err is set or Loading is true, Rows and Menu are empty.
type View struct {
	Rows          []Row
	Menu          []actions.Descriptor
	SelectAll     state.CheckState
	SelectedCount int
	Sort          state.SortState
	Loading       bool
	Err           error
}

// View builds a fresh snapshot for the given viewport.
func (s *Session) View(viewport actions.Viewport) View {
	if err := s.state.GetError(); err != nil {
		return View{Sort: s.state.GetSort(), Err: err}
	}
	if s.state.IsLoading() {
		return View{
			SelectedCount: len(s.state.GetSelectedIDs()),
			Sort:          s.state.GetSort(),
			Loading:       true,
		}
	}

	items := s.state.GetItems()
	hovered, _ := s.state.Hovered()
	rows := make([]Row, 0, len(items))
	for _, a := range items {
		rows = append(rows, Row{
			Analysis:   a,
			Flags:      capability.Resolve(a, s.user),
			Selected:   s.state.IsSelected(a.ID),
			Emphasized: hovered != "" && a.ID == hovered,
			Actions:    actions.BuildRowActions(a, s.user, s.authzOpts),
		})
	}

	selected := s.state.SelectedItems()
	return View{
		Rows:          rows,
		Menu:          s.buildMenu(selected, viewport),
		SelectAll:     s.state.SelectAllState(),
		SelectedCount: len(selected),
		Sort:          s.state.GetSort(),
	}
}

// Menu returns the aggregate action menu for the current selection.
// It is rebuilt on every call and is empty while the listing is loading
// or has an error.
func (s *Session) Menu(viewport actions.Viewport) []actions.Descriptor {
	if s.state.GetError() != nil || s.state.IsLoading() {
		return nil
	}
	return s.buildMenu(s.state.SelectedItems(), viewport)
}

// Flags returns the selection-level flags for the current selection.
func (s *Session) Flags() authz.SelectionFlags {
	return authz.Evaluate(s.state.SelectedItems(), s.user, s.authzOpts)
}

func (s *Session) buildMenu(selected []models.Analysis, viewport actions.Viewport) []actions.Descriptor {
	return actions.BuildMenu(actions.MenuInput{
		Flags:          authz.Evaluate(selected, s.user, s.authzOpts),
		DetailsEnabled: s.detailsEnabled,
		Viewport:       viewport,
	})
}

// Invoke runs a menu action against the current selection. The menu is
// rebuilt first; an action that is no longer legal yields
// ErrActionNotAvailable and the handler is not called.
func (s *Session) Invoke(ctx context.Context, id actions.ID, viewport actions.Viewport) error {
	if reason := s.unavailable(); reason != "" {
		return s.deny(id, "", reason)
	}

	selected := s.state.SelectedItems()
	if !actions.Contains(s.buildMenu(selected, viewport), id) {
		return s.deny(id, "", "not in menu")
	}

	return s.dispatch(ctx, id, selected)
}

// InvokeRow runs an inline row action for the analysis rowID.
func (s *Session) InvokeRow(ctx context.Context, rowID string, id actions.ID) error {
	if reason := s.unavailable(); reason != "" {
		return s.deny(id, rowID, reason)
	}

	a, ok := s.state.FindByID(rowID)
	if !ok {
		return s.deny(id, rowID, "row not listed")
	}
	if !actions.Contains(actions.BuildRowActions(a, s.user, s.authzOpts), id) {
		return s.deny(id, rowID, "not in row actions")
	}

	return s.dispatch(ctx, id, []models.Analysis{a})
}

// unavailable names why no action may run right now, or returns "".
func (s *Session) unavailable() string {
	switch {
	case s.state.GetError() != nil:
		return "listing error"
	case s.state.IsLoading():
		return "listing loading"
	}
	return ""
}

func (s *Session) deny(id actions.ID, rowID, reason string) error {
	s.logger.Debug().
		Str("action", id.String()).
		Str("row", rowID).
		Str("user", s.user).
		Str("reason", reason).
		Msg("Action denied")
	return fmt.Errorf("%w: %s", ErrActionNotAvailable, id)
}

// dispatch calls the collaborator for id. Guards have already checked that
// single-target actions have exactly one target.
func (s *Session) dispatch(ctx context.Context, id actions.ID, targets []models.Analysis) error {
	var first models.Analysis
	if len(targets) > 0 {
		first = targets[0]
	}

	var err error
	switch id {
	case actions.Details:
		err = s.handlers.ShowDetails(ctx, targets)
	case actions.GoOutputFolder:
		err = s.handlers.GoToOutputFolder(ctx, first)
	case actions.Relaunch:
		err = s.handlers.Relaunch(ctx, targets)
	case actions.BatchDetails:
		err = s.handlers.ToggleBatchView(ctx, first)
	case actions.GoToVice:
		err = s.handlers.OpenInteractiveURL(ctx, first, capability.PrimaryURL(first))
	case actions.ExtendTime:
		err = s.handlers.ExtendTimeLimit(ctx, first)
	case actions.ViewLogs:
		err = s.handlers.ViewLogs(ctx, first)
	case actions.Delete:
		err = s.handlers.Delete(ctx, targets)
	case actions.Filter:
		err = s.handlers.ShowFilter(ctx)
	case actions.RequestHelp:
		err = s.handlers.RequestHelp(ctx, first)
	default:
		return fmt.Errorf("%w: %s", actions.ErrUnknownAction, id)
	}

	if err != nil {
		s.logger.Error().Err(err).
			Str("action", id.String()).
			Int("targets", len(targets)).
			Msg("Action failed")
		return fmt.Errorf("%s: %w", id, err)
	}

	s.logger.Debug().
		Str("action", id.String()).
		Int("targets", len(targets)).
		Msg("Action dispatched")
	return nil
}
