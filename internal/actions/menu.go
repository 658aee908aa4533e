package actions

import (
	"github.com/rescale/rescale-analyses/internal/authz"
	"github.com/rescale/rescale-analyses/internal/models"
)

// MenuInput is everything the aggregate menu depends on.
type MenuInput struct {
	Flags          authz.SelectionFlags
	DetailsEnabled bool // details panel toggle, owned by the caller
	Viewport       Viewport
}

type menuRule struct {
	id     ID
	target Targeting
	guard  func(MenuInput) bool
}

// menuRules is evaluated top to bottom; the order is the display order.
// Extend time and view logs share one guard.
var menuRules = []menuRule{
	{Details, TargetNone, func(in MenuInput) bool { return in.DetailsEnabled }},
	{GoOutputFolder, TargetSingle, func(in MenuInput) bool { return in.Flags.Single() }},
	{Relaunch, TargetMulti, func(in MenuInput) bool { return in.Flags.AllowRelaunch }},
	{BatchDetails, TargetSingle, func(in MenuInput) bool { return in.Flags.Single() && in.Flags.IsBatch }},
	{GoToVice, TargetSingle, func(in MenuInput) bool { return in.Flags.Single() && in.Flags.IsInteractive }},
	{ExtendTime, TargetSingle, timeExtensionGuard},
	{ViewLogs, TargetSingle, timeExtensionGuard},
	{Delete, TargetMulti, func(in MenuInput) bool { return in.Flags.AllowDelete }},
	{Filter, TargetNone, func(in MenuInput) bool { return in.Viewport == Narrow }},
}

func timeExtensionGuard(in MenuInput) bool {
	return in.Flags.Single() && in.Flags.AllowTimeExtension
}

// BuildMenu returns the aggregate (dot menu) actions for a selection.
func BuildMenu(in MenuInput) []Descriptor {
	menu := make([]Descriptor, 0, len(menuRules))
	for _, rule := range menuRules {
		if rule.guard(in) {
			menu = append(menu, Descriptor{ID: rule.id, Target: rule.target})
		}
	}
	return menu
}

type rowRule struct {
	id    ID
	guard func(authz.SelectionFlags) bool
}

func always(authz.SelectionFlags) bool { return true }

// rowRules are the inline actions shown on every listing row. Output folder
// and request help are unconditional. Delete, details and filter act on the
// selection and only appear in the aggregate menu, matching the row toolbar
// of the listing UI.
var rowRules = []rowRule{
	{GoOutputFolder, always},
	{Relaunch, func(f authz.SelectionFlags) bool { return f.AllowRelaunch }},
	{BatchDetails, func(f authz.SelectionFlags) bool { return f.IsBatch }},
	{GoToVice, func(f authz.SelectionFlags) bool { return f.IsInteractive }},
	{ExtendTime, func(f authz.SelectionFlags) bool { return f.AllowTimeExtension }},
	{ViewLogs, func(f authz.SelectionFlags) bool { return f.AllowTimeExtension }},
	{RequestHelp, always},
}

// BuildRowActions returns the inline actions for a single row, evaluated as
// if that row were the only selected analysis.
func BuildRowActions(a models.Analysis, user string, opts authz.Options) []Descriptor {
	flags := authz.Evaluate([]models.Analysis{a}, user, opts)

	row := make([]Descriptor, 0, len(rowRules))
	for _, rule := range rowRules {
		if rule.guard(flags) {
			row = append(row, Descriptor{ID: rule.id, Target: TargetSingle})
		}
	}
	return row
}
