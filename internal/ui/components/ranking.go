package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/styles"
)

const (
	rankNameWidth  = 24
	rankValueWidth = 10
)

// RankBar renders ranking rows with a bar scaled to the top value.
type RankBar struct {
	progress progress.Model
}

// NewRankBar creates a ranking bar with the heat gradient.
func NewRankBar() RankBar {
	p := progress.New(
		progress.WithScaledGradient("#5fafd7", "#ff5f5f"),
		progress.WithWidth(30),
		progress.WithoutPercentage(),
	)
	return RankBar{progress: p}
}

// View renders one ranked list. The field selects both the bar length and
// the value column.
func (r RankBar) View(title string, stats []models.MunicipalityStat, field models.Field, width int) string {
	var b strings.Builder
	b.WriteString(styles.CardTitleStyle.Render(title))
	b.WriteString("\n")

	if len(stats) == 0 {
		b.WriteString(styles.HelpStyle.Render("No municipalities qualify"))
		return b.String()
	}

	top, _ := stats[0].Value(field)
	if top <= 0 {
		top = 1
	}

	r.progress.Width = max(width-rankNameWidth-rankValueWidth-8, 5)
	name := lipgloss.NewStyle().Width(rankNameWidth).MaxWidth(rankNameWidth)
	value := styles.NumberStyle.Width(rankValueWidth)

	for i := range stats {
		v, _ := stats[i].Value(field)
		row := lipgloss.JoinHorizontal(lipgloss.Center,
			styles.RankStyle.Render(fmt.Sprintf("%d.", i+1)),
			" ",
			name.Render(CityLabel(&stats[i])),
			r.progress.ViewAs(v/top),
			value.Render(FormatValue(field, v)),
		)
		b.WriteString(row)
		if i < len(stats)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// CityLabel returns "Name/UF", falling back to the code when the name is
// unknown.
func CityLabel(s *models.MunicipalityStat) string {
	name := s.Name
	if name == "" {
		name = s.Code
	}
	if s.State == "" {
		return name
	}
	return name + "/" + s.State
}

// FormatValue formats a field value for display: counts with thousands
// separators, rates with two decimals.
func FormatValue(field models.Field, v float64) string {
	switch field {
	case models.FieldPerThousandPopulation, models.FieldPerThousandVehicles:
		return fmt.Sprintf("%.2f", v)
	default:
		return humanize.Comma(int64(v))
	}
}
