// Package common holds rendering shared by the tabs.
package common

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/accidents-dashboard-tui/internal/app"
	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/styles"
)

// Placeholder returns the panel a report tab shows instead of its content:
// a spinner while loading, or an explanation when there is nothing to show.
// The second result is false when the report is ready to render.
func Placeholder(state *app.State, spinner components.LoadingSpinner, width, height int) (string, bool) {
	if state.IsInitialLoading() {
		return spinner.For(components.PhaseDataset, state.GetFilter()).Centered(width, height), true
	}

	if state.GetDataset() == nil {
		detail := "No dataset loaded."
		if err := state.GetLoadError(); err != nil {
			detail = err.Error()
		}
		return EmptyState("Could not load data", detail,
			"Check ACCIDENTS_PATH and MUNICIPALITIES_PATH, then press r to reload.", width, height), true
	}

	rep, err := state.GetReport()
	if rep == nil {
		if err != nil {
			return EmptyState("Report unavailable", err.Error(), "", width, height), true
		}
		return spinner.For(components.PhaseReport, state.GetFilter()).Centered(width, height), true
	}

	if rep.NoData {
		return EmptyState("No data",
			fmt.Sprintf("No accidents recorded for %s.", rep.Filter),
			"Pick another state with [ and ] on the Overview tab.", width, height), true
	}

	return "", false
}

// EmptyState renders a centered, bordered explanation.
func EmptyState(title, detail, hint string, width, height int) string {
	lines := []string{styles.WarningTextStyle.Bold(true).Render(title), "", detail}
	if hint != "" {
		lines = append(lines, "", styles.HelpStyle.Render(hint))
	}
	panel := styles.EmptyStateStyle.MaxWidth(max(width-4, 20)).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	return styles.CenterBoth(panel, width, height)
}

// Title renders a tab heading with the selection it describes.
func Title(name string, filter models.StateFilter) string {
	return styles.TitleStyle.Render(name) + " " + styles.HelpStyle.Render(filter.String())
}
