package maptab

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/styles"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/tabs/common"
)

// View renders the map tab.
func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}

	header := common.Title("Map", m.state.GetFilter())
	if panel, ok := common.Placeholder(m.state, m.spinner, m.width, max(m.height-2, 5)); ok {
		return lipgloss.JoinVertical(lipgloss.Left, header, panel)
	}

	rep, _ := m.state.GetReport()
	g := m.gridFor(rep)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		styles.BlurredBorderStyle.Render(components.RenderDensityMap(g)),
		styles.HelpDescStyle.Render("Accidents per cell ")+components.RenderHeatLegend(g.Max),
		styles.HelpStyle.Render(components.DensitySummary(g)),
	)
}
