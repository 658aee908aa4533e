package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rescale/rescale-analyses/internal/actions"
	"github.com/rescale/rescale-analyses/internal/authz"
	"github.com/rescale/rescale-analyses/internal/capability"
	"github.com/rescale/rescale-analyses/internal/events"
	rhttp "github.com/rescale/rescale-analyses/internal/http"
	"github.com/rescale/rescale-analyses/internal/listing"
	"github.com/rescale/rescale-analyses/internal/logging"
	"github.com/rescale/rescale-analyses/internal/models"
	"github.com/rescale/rescale-analyses/internal/session"
	"github.com/rescale/rescale-analyses/internal/state"
)

// sessionFlags are the interaction flags shared by the analyses commands.
// They replay what a user would do in the listing: sort clicks, then
// selection clicks.
type sessionFlags struct {
	sorts     []string
	selectIDs []string
	selectAll bool
	viewport  string
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.sorts, "sort", nil, "Click a column header (name, startdate, enddate, status); repeat to flip")
	cmd.Flags().StringSliceVarP(&f.selectIDs, "select", "s", nil, "Analysis IDs to select (comma-separated or repeated)")
	cmd.Flags().BoolVar(&f.selectAll, "select-all", false, "Click the select-all checkbox")
	cmd.Flags().StringVar(&f.viewport, "viewport", "", "Viewport class: wide or narrow (default: detected from terminal width)")
}

// openSession loads the configured listing and replays the interaction flags.
// The returned cleanup func must be called when done.
func openSession(ctx context.Context, out io.Writer, f *sessionFlags) (*session.Session, actions.Viewport, func(), error) {
	noop := func() {}
	logger := GetLogger()

	cfg, err := loadConfig()
	if err != nil {
		return nil, actions.Wide, noop, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, actions.Wide, noop, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.ListingURL != "" && rhttp.NeedsProxyPassword(cfg) {
		if cfg.ProxyPassword, err = promptSecret(out, "Proxy password"); err != nil {
			return nil, actions.Wide, noop, err
		}
	}

	viewport := actions.Wide
	if f.viewport != "" {
		if viewport, err = actions.ParseViewport(f.viewport); err != nil {
			return nil, actions.Wide, noop, err
		}
	} else {
		viewport = detectViewport(cfg.NarrowWidth)
	}

	initial, err := cfg.InitialSort()
	if err != nil {
		return nil, actions.Wide, noop, err
	}

	bus := events.NewEventBus(0)
	cleanup := watchEvents(bus, logger.Component("state"))

	st := state.NewAnalysisListState(initial, bus)

	var override authz.OwnershipOverride
	if cfg.AdminPolicyPath != "" {
		policy, err := authz.LoadPolicyOverride(cfg.AdminPolicyPath, logger)
		if err != nil {
			cleanup()
			return nil, actions.Wide, noop, err
		}
		override = policy
	}

	src, err := listing.NewSource(cfg, logger)
	if err != nil {
		cleanup()
		return nil, actions.Wide, noop, err
	}
	logger.Debug().Str("user", cfg.Username).Msg("Fetching analyses")
	if err := listing.Load(ctx, src, st); err != nil {
		cleanup()
		return nil, actions.Wide, noop, fmt.Errorf("failed to load analyses: %w", err)
	}

	if err := replay(st, f); err != nil {
		cleanup()
		return nil, actions.Wide, noop, err
	}

	sess := session.New(session.Options{
		User:           cfg.Username,
		State:          st,
		Handlers:       &cliHandlers{out: out, logger: logger},
		Override:       override,
		DetailsEnabled: cfg.DetailsEnabled,
		Logger:         logger,
	})
	return sess, viewport, cleanup, nil
}

// replay applies sort clicks then selection clicks to st.
func replay(st *state.AnalysisListState, f *sessionFlags) error {
	for _, s := range f.sorts {
		col, err := state.ParseColumn(s)
		if err != nil {
			return err
		}
		st.RequestSort(col)
	}
	if f.selectAll {
		st.ToggleSelectAll()
	}
	for _, id := range f.selectIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := st.FindByID(id); !ok {
			return fmt.Errorf("analysis %q is not in the listing", id)
		}
		st.ToggleSelect(id)
	}
	return nil
}

// watchEvents logs state changes until the bus is closed. The returned
// func closes the bus and waits until every buffered event is logged.
func watchEvents(bus *events.EventBus, logger *logging.Logger) func() {
	ch := bus.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range ch {
			logEvent(logger, e)
		}
	}()

	return func() {
		bus.Close()
		<-done
		if n := bus.Dropped(); n > 0 {
			logger.Warn().Int64("dropped", n).Msg("State events dropped before they were logged")
		}
	}
}

func logEvent(logger *logging.Logger, e events.Event) {
	switch ev := e.(type) {
	case *state.SelectionChangedEvent:
		if len(ev.Dropped) > 0 {
			logger.Info().Strs("dropped", ev.Dropped).Msg("Selected analyses are no longer listed")
			return
		}
		logger.Debug().Int("selected", len(ev.SelectedIDs)).Msg("Selection changed")
	case *state.SortChangedEvent:
		logger.Debug().Str("sort", ev.Sort.String()).Msg("Sort changed")
	case *state.AnalysisListErrorEvent:
		logger.Debug().Err(ev.Error).Msg("Listing failed")
	default:
		logger.Debug().Str("event", string(e.Type())).Msg("State changed")
	}
}

// newAnalysesCmd creates the 'analyses' command group.
func newAnalysesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "analyses",
		Aliases: []string{"a"},
		Short:   "Analyses operations (list, menu, actions, invoke)",
		Long:    `Commands for browsing analyses and the actions available on them.`,
	}

	cmd.AddCommand(newAnalysesListCmd())
	cmd.AddCommand(newAnalysesMenuCmd())
	cmd.AddCommand(newAnalysesActionsCmd())
	cmd.AddCommand(newAnalysesInvokeCmd())

	return cmd
}

// newAnalysesListCmd creates the 'analyses list' command.
func newAnalysesListCmd() *cobra.Command {
	var f sessionFlags
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List analyses with their row actions",
		Long: `List the analyses visible to the acting user.

Example:
  # Newest first (default)
  rescale-analyses analyses list

  # Sort by name, then flip to descending
  rescale-analyses analyses list --sort name --sort name

  # Mark a selection
  rescale-analyses analyses list --select a1,a2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, viewport, cleanup, err := openSession(GetContext(), cmd.OutOrStdout(), &f)
			if err != nil {
				return err
			}
			defer cleanup()

			printView(cmd.OutOrStdout(), sess.View(viewport), limit)
			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Limit number of analyses displayed (0 = all)")

	return cmd
}

// newAnalysesMenuCmd creates the 'analyses menu' command.
func newAnalysesMenuCmd() *cobra.Command {
	var f sessionFlags

	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Show the action menu for a selection",
		Long: `Show the actions available for the selected analyses, in menu order.

Example:
  rescale-analyses analyses menu --select a1
  rescale-analyses analyses menu --select a1,a2,a3 --viewport narrow`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, viewport, cleanup, err := openSession(GetContext(), cmd.OutOrStdout(), &f)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			flags := sess.Flags()
			fmt.Fprintf(out, "Selected: %d  Viewport: %s\n", flags.Count, viewport)
			printDescriptors(out, sess.Menu(viewport))
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

// newAnalysesActionsCmd creates the 'analyses actions' command.
func newAnalysesActionsCmd() *cobra.Command {
	var f sessionFlags

	cmd := &cobra.Command{
		Use:   "actions <analysis-id>",
		Short: "Show the inline row actions for one analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, viewport, cleanup, err := openSession(GetContext(), cmd.OutOrStdout(), &f)
			if err != nil {
				return err
			}
			defer cleanup()

			for _, row := range sess.View(viewport).Rows {
				if row.Analysis.ID == args[0] {
					printDescriptors(cmd.OutOrStdout(), row.Actions)
					return nil
				}
			}
			return fmt.Errorf("analysis %q is not in the listing", args[0])
		},
	}

	f.register(cmd)
	return cmd
}

// newAnalysesInvokeCmd creates the 'analyses invoke' command.
func newAnalysesInvokeCmd() *cobra.Command {
	var f sessionFlags
	var row string

	cmd := &cobra.Command{
		Use:   "invoke <action>",
		Short: "Invoke an action on the selection or on one row",
		Long: `Invoke an action if the current user is allowed to.

Actions: details, go-output-folder, relaunch, batch-details, go-to-vice,
extend-time, view-logs, delete, filter, request-help.

Example:
  # Menu action on a selection
  rescale-analyses analyses invoke delete --select a1,a2

  # Inline action on one row
  rescale-analyses analyses invoke request-help --row a1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := actions.ParseID(args[0])
			if err != nil {
				return err
			}

			ctx := GetContext()
			sess, viewport, cleanup, err := openSession(ctx, cmd.OutOrStdout(), &f)
			if err != nil {
				return err
			}
			defer cleanup()

			if row != "" {
				return sess.InvokeRow(ctx, row, id)
			}
			return sess.Invoke(ctx, id, viewport)
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&row, "row", "", "Invoke an inline row action on this analysis instead of the selection")

	return cmd
}

func formatTimestamp(ts models.Timestamp) string {
	if !ts.Valid() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}

func actionNames(ds []actions.Descriptor) string {
	names := make([]string, 0, len(ds))
	for _, d := range ds {
		names = append(names, d.ID.String())
	}
	return strings.Join(names, ",")
}

func printView(out io.Writer, v session.View, limit int) {
	if v.Err != nil {
		fmt.Fprintf(out, "Listing unavailable: %v\n", v.Err)
		return
	}
	if len(v.Rows) == 0 {
		fmt.Fprintln(out, "No analyses found")
		return
	}

	fmt.Fprintf(out, "Sort: %s  Selected: %d (%s)\n\n", v.Sort, v.SelectedCount, v.SelectAll)

	displayCount := len(v.Rows)
	if limit > 0 && limit < displayCount {
		displayCount = limit
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEL\tID\tNAME\tAPP\tOWNER\tSTATUS\tSTARTED\tENDED\tACTIONS")
	for _, row := range v.Rows[:displayCount] {
		mark := "[ ]"
		if row.Selected {
			mark = "[x]"
		}
		a := row.Analysis
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			mark, a.ID, a.Name, a.AppName, capability.NormalizeUsername(a.Owner), a.Status,
			formatTimestamp(a.StartDate), formatTimestamp(a.EndDate), actionNames(row.Actions))
	}
	tw.Flush()

	if displayCount < len(v.Rows) {
		fmt.Fprintf(out, "\n(Showing %d of %d analyses. Use --limit to change)\n", displayCount, len(v.Rows))
	}
	if len(v.Menu) > 0 {
		fmt.Fprintf(out, "\nMenu: %s\n", actionNames(v.Menu))
	}
}

func printDescriptors(out io.Writer, ds []actions.Descriptor) {
	if len(ds) == 0 {
		fmt.Fprintln(out, "No actions available")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ACTION\tTARGET")
	for _, d := range ds {
		fmt.Fprintf(tw, "%s\t%s\n", d.ID, d.Target)
	}
	tw.Flush()
}
