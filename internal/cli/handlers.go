package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rescale/rescale-analyses/internal/logging"
	"github.com/rescale/rescale-analyses/internal/models"
	"github.com/rescale/rescale-analyses/internal/session"
)

// cliHandlers carries out authorized actions by reporting what the console
// would open or request. Submission and deletion stay with the platform UI.
type cliHandlers struct {
	out    io.Writer
	logger *logging.Logger
}

var _ session.Handlers = (*cliHandlers)(nil)

func joinIDs(items []models.Analysis) string {
	ids := make([]string, 0, len(items))
	for _, a := range items {
		ids = append(ids, a.ID)
	}
	return strings.Join(ids, ", ")
}

func (h *cliHandlers) report(action, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	h.logger.Info().Str("action", action).Msg(msg)
	_, err := fmt.Fprintf(h.out, "%s: %s\n", action, msg)
	return err
}

func (h *cliHandlers) ShowDetails(_ context.Context, selected []models.Analysis) error {
	if len(selected) == 0 {
		return h.report("details", "details panel opened")
	}
	return h.report("details", "details panel opened for %s", joinIDs(selected))
}

func (h *cliHandlers) GoToOutputFolder(_ context.Context, a models.Analysis) error {
	return h.report("go-output-folder", "output folder of %s (%s)", a.ID, a.Name)
}

func (h *cliHandlers) Relaunch(_ context.Context, selected []models.Analysis) error {
	return h.report("relaunch", "relaunch requested for %s", joinIDs(selected))
}

func (h *cliHandlers) ToggleBatchView(_ context.Context, a models.Analysis) error {
	return h.report("batch-details", "showing sub-analyses of %s", a.ID)
}

func (h *cliHandlers) OpenInteractiveURL(_ context.Context, a models.Analysis, url string) error {
	return h.report("go-to-vice", "interactive session of %s at %s", a.ID, url)
}

func (h *cliHandlers) ExtendTimeLimit(_ context.Context, a models.Analysis) error {
	return h.report("extend-time", "time limit extension requested for %s", a.ID)
}

func (h *cliHandlers) ViewLogs(_ context.Context, a models.Analysis) error {
	return h.report("view-logs", "logs of %s", a.ID)
}

func (h *cliHandlers) Delete(_ context.Context, selected []models.Analysis) error {
	return h.report("delete", "deletion requested for %s", joinIDs(selected))
}

func (h *cliHandlers) ShowFilter(context.Context) error {
	return h.report("filter", "filter panel opened")
}

func (h *cliHandlers) RequestHelp(_ context.Context, a models.Analysis) error {
	return h.report("request-help", "support request drafted for %s", a.ID)
}
