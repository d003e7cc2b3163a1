package overview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/styles"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/tabs/common"
)

// headerHeight is the number of lines above the body: title, selector,
// summary and spacing.
const headerHeight = 6

// selectorEntryWidth is the rendered width of one UF in the selector.
const selectorEntryWidth = 5

// View renders the overview tab.
func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		common.Title("Overview", m.state.GetFilter()),
		m.renderSelector(),
	)

	if panel, ok := common.Placeholder(m.state, m.spinner, m.width, max(m.height-4, 5)); ok {
		return lipgloss.JoinVertical(lipgloss.Left, header, panel)
	}

	rep, _ := m.state.GetReport()
	header = lipgloss.JoinVertical(lipgloss.Left, header, m.renderSummary(rep), "")

	var body string
	if m.mode == modeListing {
		body = m.renderListing()
	} else {
		m.viewport.SetContent(m.renderRankings(rep))
		body = m.viewport.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

// renderSelector draws the UF selector, windowed around the active entry
// when every state does not fit on one line.
func (m *Model) renderSelector() string {
	opts := m.state.StateOptions()
	if len(opts) == 0 {
		return ""
	}

	active := m.state.GetFilter()
	idx := 0
	for i, o := range opts {
		if o == active {
			idx = i
			break
		}
	}

	fits := max((m.width-4)/selectorEntryWidth, 3)
	start, end := 0, len(opts)
	if len(opts) > fits {
		start = max(idx-fits/2, 0)
		end = min(start+fits, len(opts))
		start = max(end-fits, 0)
	}

	var parts []string
	if start > 0 {
		parts = append(parts, styles.HelpStyle.Render("‹"))
	}
	for _, o := range opts[start:end] {
		label := string(o)
		if o == active {
			parts = append(parts, styles.SelectorActiveStyle.Render(label))
		} else {
			parts = append(parts, styles.SelectorInactiveStyle.Render(label))
		}
	}
	if end < len(opts) {
		parts = append(parts, styles.HelpStyle.Render("›"))
	}

	return strings.Join(parts, " ")
}

// renderSummary shows the totals and the exclusions for the selection.
func (m *Model) renderSummary(rep *models.StateReport) string {
	day, _ := rep.WeekdayHour.PeakDay()
	hour, hourCount := rep.WeekdayHour.PeakHour()

	parts := []string{
		styles.NumberStyle.Bold(true).Render(humanize.Comma(int64(rep.TotalAccidents))) + " accidents",
		humanize.Comma(int64(len(rep.Listing))) + " municipalities",
	}
	if hourCount > 0 {
		parts = append(parts, fmt.Sprintf("peak %s, %02dh", day, hour))
	}
	if q := rep.Quality; q.UnmatchedCodes > 0 {
		parts = append(parts, styles.WarningTextStyle.Render(
			fmt.Sprintf("%s unmatched codes (%s accidents)",
				humanize.Comma(int64(q.UnmatchedCodes)), humanize.Comma(int64(q.UnmatchedAccidents)))))
	}

	return strings.Join(parts, styles.HelpSeparatorStyle.Render(" · "))
}

// renderRankings stacks the three top-N rankings.
func (m *Model) renderRankings(rep *models.StateReport) string {
	width := max(m.width-2, 40)
	sections := []string{
		m.rankBar.View(fmt.Sprintf("Top %d by accidents", rep.TopN),
			rep.TopByAccidents, models.FieldAccidents, width),
		m.rankBar.View(fmt.Sprintf("Top %d per 1,000 inhabitants", rep.TopN),
			rep.TopPerPopulation, models.FieldPerThousandPopulation, width),
		m.rankBar.View(fmt.Sprintf("Top %d per 1,000 vehicles", rep.TopN),
			rep.TopPerVehicles, models.FieldPerThousandVehicles, width),
	}
	return strings.Join(sections, "\n\n")
}

// renderListing shows the search box and the per-city table.
func (m *Model) renderListing() string {
	order := "by accidents"
	if m.sortByName {
		order = "by name"
	}

	var top string
	switch {
	case m.searching:
		top = m.search.View()
	case m.search.Value() != "":
		top = styles.HelpStyle.Render(fmt.Sprintf("filter %q · esc to clear", m.search.Value()))
	default:
		top = styles.HelpStyle.Render("/ to search")
	}
	top += styles.HelpStyle.Render(fmt.Sprintf("  %s cities, sorted %s",
		humanize.Comma(int64(len(m.rows))), order))

	if len(m.rows) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, top, "",
			styles.HelpStyle.Render("No municipalities match"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, top, m.table.View())
}

// listingColumns sizes the table to the tab width. The city column takes
// whatever the numeric columns leave.
func listingColumns(width int) []table.Column {
	numeric := []table.Column{
		{Title: "UF", Width: 3},
		{Title: "Accidents", Width: 10},
		{Title: "Population", Width: 12},
		{Title: "Fleet", Width: 11},
		{Title: "Per 1k pop", Width: 10},
		{Title: "Per 1k veh", Width: 10},
	}
	used := 5
	for _, c := range numeric {
		used += c.Width + 2
	}
	city := max(width-used-4, 16)

	return append([]table.Column{
		{Title: "#", Width: 4},
		{Title: "City", Width: city},
	}, numeric...)
}

func listingRow(pos int, s *models.MunicipalityStat) table.Row {
	return table.Row{
		fmt.Sprintf("%d", pos),
		cityName(s),
		s.State,
		humanize.Comma(int64(s.Accidents)),
		optionalValue(s, models.FieldPopulation),
		optionalValue(s, models.FieldFleet),
		optionalValue(s, models.FieldPerThousandPopulation),
		optionalValue(s, models.FieldPerThousandVehicles),
	}
}

func cityName(s *models.MunicipalityStat) string {
	if s.Name == "" {
		return s.Code
	}
	return s.Name
}

// optionalValue renders "-" when the metadata behind a field is missing.
func optionalValue(s *models.MunicipalityStat, f models.Field) string {
	v, ok := s.Value(f)
	if !ok {
		return "-"
	}
	return components.FormatValue(f, v)
}
