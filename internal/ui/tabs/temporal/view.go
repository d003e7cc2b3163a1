package temporal

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/styles"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/tabs/common"
)

// busiestPeriods is how many periods the bar chart lists.
const busiestPeriods = 5

// View renders the temporal tab.
func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		common.Title("Temporal", m.state.GetFilter()),
		"  ",
		m.renderGranularity(),
	)

	if panel, ok := common.Placeholder(m.state, m.spinner, m.width, max(m.height-2, 5)); ok {
		return lipgloss.JoinVertical(lipgloss.Left, header, panel)
	}

	rep, _ := m.state.GetReport()
	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left,
		m.renderPeriods(rep),
		m.renderWeekdayHour(rep),
		m.renderDropped(rep.Quality),
	))

	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View())
}

func (m *Model) renderGranularity() string {
	current := m.state.GetGranularity()
	var parts []string
	for _, g := range []models.Granularity{models.GranularityMonth, models.GranularityWeek} {
		if g == current {
			parts = append(parts, styles.SelectorActiveStyle.Render(g.String()))
		} else {
			parts = append(parts, styles.SelectorInactiveStyle.Render(g.String()))
		}
	}
	return strings.Join(parts, " ")
}

// renderPeriods draws the line chart and the busiest periods.
func (m *Model) renderPeriods(rep *models.StateReport) string {
	title := fmt.Sprintf("Accidents per %s", strings.ToLower(rep.Granularity.String()))
	chart := components.RenderPeriodChart(rep.Periods, max(m.width-14, 20), 8)

	busiest := slices.Clone(rep.Periods)
	slices.SortStableFunc(busiest, func(a, b models.PeriodCount) int {
		return b.Count - a.Count
	})
	busiest = busiest[:min(len(busiest), busiestPeriods)]

	values := make([]int, len(busiest))
	labels := make([]string, len(busiest))
	for i, p := range busiest {
		values[i] = p.Count
		labels[i] = p.Label
	}

	card := lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitleStyle.Render(title),
		chart,
	)
	if len(busiest) > 0 {
		card = lipgloss.JoinVertical(lipgloss.Left, card, "",
			styles.SubTitleStyle.Render("Busiest periods"),
			components.RenderBarChart(values, labels, max(m.width-10, 30)),
		)
	}
	return styles.CardStyle.Width(max(m.width-2, 30)).Render(card)
}

// renderWeekdayHour draws the heatmap, the hourly profile and the peaks.
func (m *Model) renderWeekdayHour(rep *models.StateReport) string {
	wh := &rep.WeekdayHour

	day, dayCount := wh.PeakDay()
	hour, hourCount := wh.PeakHour()
	peaks := styles.HelpStyle.Render("No timed accidents")
	if wh.Total() > 0 {
		peaks = fmt.Sprintf("Peak day %s (%s) · peak hour %02dh (%s)",
			styles.HelpKeyStyle.Render(day), humanize.Comma(int64(dayCount)),
			hour, humanize.Comma(int64(hourCount)))
	}

	card := lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitleStyle.Render("Weekday × hour"),
		components.RenderWeekdayHourHeatmap(wh),
		"",
		styles.HelpDescStyle.Render("By hour  ")+components.RenderHourlyProfile(wh.HourTotals()),
		styles.HelpDescStyle.Render("Scale    ")+components.RenderHeatLegend(wh.Max()),
		"",
		peaks,
	)
	return styles.CardStyle.Width(max(m.width-2, 30)).Render(card)
}

// renderDropped notes the rows the temporal views could not place.
func (m *Model) renderDropped(q models.DataQuality) string {
	if q.PeriodDropped == 0 && q.HourDropped == 0 {
		return ""
	}
	return styles.WarningTextStyle.Render(fmt.Sprintf(
		"%s accidents without a parseable date, %s without a parseable time",
		humanize.Comma(int64(q.PeriodDropped)), humanize.Comma(int64(q.HourDropped))))
}
