package session

import (
	"context"

	"github.com/rescale/rescale-analyses/internal/models"
)

// Handlers are the collaborators that carry out an authorized action.
// The session only decides whether an action is legal and which analyses it
// targets; navigation, dialogs and network calls belong to the handler.
type Handlers interface {
	ShowDetails(ctx context.Context, selected []models.Analysis) error
	GoToOutputFolder(ctx context.Context, a models.Analysis) error
	Relaunch(ctx context.Context, selected []models.Analysis) error
	ToggleBatchView(ctx context.Context, a models.Analysis) error
	OpenInteractiveURL(ctx context.Context, a models.Analysis, url string) error
	ExtendTimeLimit(ctx context.Context, a models.Analysis) error
	ViewLogs(ctx context.Context, a models.Analysis) error
	Delete(ctx context.Context, selected []models.Analysis) error
	ShowFilter(ctx context.Context) error
	RequestHelp(ctx context.Context, a models.Analysis) error
}

// NopHandlers implements Handlers by doing nothing. Embed it to override
// only the collaborators you need.
type NopHandlers struct{}

func (NopHandlers) ShowDetails(context.Context, []models.Analysis) error { return nil }
func (NopHandlers) GoToOutputFolder(context.Context, models.Analysis) error { return nil }
func (NopHandlers) Relaunch(context.Context, []models.Analysis) error { return nil }
func (NopHandlers) ToggleBatchView(context.Context, models.Analysis) error { return nil }
func (NopHandlers) OpenInteractiveURL(context.Context, models.Analysis, string) error { return nil }
func (NopHandlers) ExtendTimeLimit(context.Context, models.Analysis) error { return nil }
func (NopHandlers) ViewLogs(context.Context, models.Analysis) error { return nil }
func (NopHandlers) Delete(context.Context, []models.Analysis) error { return nil }
func (NopHandlers) ShowFilter(context.Context) error { return nil }
func (NopHandlers) RequestHelp(context.Context, models.Analysis) error { return nil }

var _ Handlers = NopHandlers{}
