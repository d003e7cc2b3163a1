package correlation

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/styles"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/tabs/common"
)

// View renders the correlation tab.
func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}

	header := common.Title("Correlation", m.state.GetFilter())
	if panel, ok := common.Placeholder(m.state, m.spinner, m.width, max(m.height-2, 5)); ok {
		return lipgloss.JoinVertical(lipgloss.Left, header, panel)
	}

	rep, _ := m.state.GetReport()
	c := &rep.Correlation

	note := fmt.Sprintf("Pearson coefficients over %s municipalities with population and fleet",
		humanize.Comma(int64(c.Rows)))
	matrix := lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitleStyle.Render("Matrix"),
		components.RenderCorrelationMatrix(c),
		"",
		styles.HelpStyle.Render(note),
	)

	var lines []string
	for _, p := range rankedPairs(c) {
		lines = append(lines, fmt.Sprintf("%s  %-10s %s ~ %s",
			components.FormatCoefficient(p.R),
			components.DescribeCoefficient(p.R),
			p.A.Label(), p.B.Label()))
	}
	if len(lines) == 0 {
		lines = append(lines, styles.HelpStyle.Render("No pairs"))
	}
	pairs := lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitleStyle.Render("Strongest pairs"),
		strings.Join(lines, "\n"),
	)

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left,
		styles.CardStyle.Render(matrix),
		styles.CardStyle.Render(pairs),
	))
	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View())
}
