package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/styles"
)

const matrixCellWidth = 12

// RenderCorrelationMatrix draws the coefficients as a colored grid. Cells
// whose correlation is undefined show "n/a".
func RenderCorrelationMatrix(c *models.CorrelationMatrix) string {
	if c.Empty() {
		return styles.HelpStyle.Render("No correlation available")
	}

	labelWidth := 0
	for _, f := range c.Fields {
		labelWidth = max(labelWidth, lipgloss.Width(f.Label()))
	}

	cell := lipgloss.NewStyle().Width(matrixCellWidth).Align(lipgloss.Right)
	label := lipgloss.NewStyle().Width(labelWidth + 1)

	var rows []string

	header := []string{label.Render("")}
	for _, f := range c.Fields {
		header = append(header, cell.Inherit(styles.TableHeaderStyle.UnsetBorderBottom()).Render(f.Label()))
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, header...))

	for i, f := range c.Fields {
		line := []string{label.Inherit(styles.HelpDescStyle).Render(f.Label())}
		for j := range c.Fields {
			line = append(line, cell.Render(FormatCoefficient(c.Values[i][j])))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, line...))
	}

	return strings.Join(rows, "\n")
}

// FormatCoefficient renders a coefficient with sign and color.
func FormatCoefficient(r float64) string {
	if math.IsNaN(r) {
		return styles.CorrelationStyle(r).Render("n/a")
	}
	return styles.CorrelationStyle(r).Render(fmt.Sprintf("%+.2f", r))
}

// DescribeCoefficient names the strength of a correlation.
func DescribeCoefficient(r float64) string {
	a := math.Abs(r)
	switch {
	case math.IsNaN(r):
		return "undefined"
	case a >= 0.7:
		return "strong"
	case a >= 0.3:
		return "moderate"
	case a >= 0.1:
		return "weak"
	default:
		return "none"
	}
}
