package export

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	numberStyle  = cellStyle.Align(lipgloss.Right)
)

// chartWidth is the plot width of the period chart in columns.
const chartWidth = 60

// WriteText renders rep as plain-text tables.
func WriteText(w io.Writer, rep *models.StateReport) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", headingStyle.Render(
		fmt.Sprintf("Traffic accidents · %s · per %s", rep.Filter, strings.ToLower(rep.Granularity.String()))))

	if rep.NoData {
		fmt.Fprintf(&b, "\nNo accidents recorded for %s.\n", rep.Filter)
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "%s accidents in %s municipalities\n",
		humanize.Comma(int64(rep.TotalAccidents)), humanize.Comma(int64(len(rep.Listing))))

	section(&b, fmt.Sprintf("Top %d by accidents", rep.TopN),
		rankingTable(rep.TopByAccidents, models.FieldAccidents))
	section(&b, fmt.Sprintf("Top %d per 1,000 inhabitants", rep.TopN),
		rankingTable(rep.TopPerPopulation, models.FieldPerThousandPopulation))
	section(&b, fmt.Sprintf("Top %d per 1,000 vehicles", rep.TopN),
		rankingTable(rep.TopPerVehicles, models.FieldPerThousandVehicles))

	section(&b, "Accidents per "+strings.ToLower(rep.Granularity.String()), periodsText(rep.Periods))
	section(&b, "Weekday × hour", weekdayText(&rep.WeekdayHour))
	section(&b, "Correlation", correlationText(&rep.Correlation))
	section(&b, "Data quality", qualityText(rep.Quality))

	_, err := io.WriteString(w, b.String())
	return err
}

func section(b *strings.Builder, title, body string) {
	fmt.Fprintf(b, "\n%s\n%s\n", headingStyle.Render(title), body)
}

// newTable creates a bordered table whose listed columns are right-aligned.
func newTable(numeric []int, headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case slices.Contains(numeric, col):
				return numberStyle
			default:
				return cellStyle
			}
		})
}

func rankingTable(stats []models.MunicipalityStat, field models.Field) string {
	if len(stats) == 0 {
		return "No municipalities qualify."
	}

	t := newTable([]int{0, 3}, "#", "City", "UF", field.Label())
	for i := range stats {
		v, _ := stats[i].Value(field)
		name := stats[i].Name
		if name == "" {
			name = stats[i].Code
		}
		t.Row(fmt.Sprintf("%d", i+1), name, stats[i].State, formatValue(field, v))
	}
	return t.Render()
}

func formatValue(field models.Field, v float64) string {
	switch field {
	case models.FieldPerThousandPopulation, models.FieldPerThousandVehicles:
		return fmt.Sprintf("%.2f", v)
	default:
		return humanize.Comma(int64(v))
	}
}

func periodsText(periods []models.PeriodCount) string {
	if len(periods) == 0 {
		return "No dated accidents."
	}

	data := make([]float64, len(periods))
	for i, p := range periods {
		data[i] = float64(p.Count)
	}
	if len(data) == 1 {
		data = append(data, data[0])
	}
	chart := asciigraph.Plot(data,
		asciigraph.Height(8),
		asciigraph.Width(chartWidth),
		asciigraph.Precision(0),
		asciigraph.Caption(periods[0].Label+" → "+periods[len(periods)-1].Label),
	)

	t := newTable([]int{1}, "Period", "Accidents")
	for _, p := range periods {
		t.Row(p.Label, humanize.Comma(int64(p.Count)))
	}
	return chart + "\n\n" + t.Render()
}

func weekdayText(m *models.WeekdayHourMatrix) string {
	if m.Total() == 0 {
		return "No timed accidents."
	}

	day, dayCount := m.PeakDay()
	hour, hourCount := m.PeakHour()

	totals := m.DayTotals()
	t := newTable([]int{1}, "Day", "Accidents")
	for d, n := range totals {
		t.Row(models.DayNames[d], humanize.Comma(int64(n)))
	}

	return fmt.Sprintf("Peak day %s (%s), peak hour %02dh (%s)\n%s",
		day, humanize.Comma(int64(dayCount)), hour, humanize.Comma(int64(hourCount)), t.Render())
}

func correlationText(c *models.CorrelationMatrix) string {
	if c.Empty() {
		return "No correlation available."
	}

	headers := []string{""}
	for _, f := range c.Fields {
		headers = append(headers, f.Label())
	}
	t := newTable(numericCols(len(headers)), headers...)
	for i, f := range c.Fields {
		row := []string{f.Label()}
		for _, r := range c.Values[i] {
			row = append(row, formatCoefficient(r))
		}
		t.Row(row...)
	}
	return fmt.Sprintf("%s\nComputed over %s municipalities.", t.Render(), humanize.Comma(int64(c.Rows)))
}

// numericCols lists every column but the first.
func numericCols(n int) []int {
	cols := make([]int, 0, n)
	for i := 1; i < n; i++ {
		cols = append(cols, i)
	}
	return cols
}

func formatCoefficient(r float64) string {
	if math.IsNaN(r) {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f", r)
}

func qualityText(q models.DataQuality) string {
	lines := []struct {
		label string
		n     int
	}{
		{"Unmatched municipality codes", q.UnmatchedCodes},
		{"Accidents with unmatched codes", q.UnmatchedAccidents},
		{"Duplicate municipality rows", q.DuplicateMunicipalities},
		{"Cities without population", q.PopulationSkipped},
		{"Cities without fleet", q.FleetSkipped},
		{"Unparseable dates", q.PeriodDropped},
		{"Unparseable times", q.HourDropped},
		{"Accidents without coordinates", q.NullCoordinates},
	}

	var b strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&b, "%-32s %s\n", l.label, humanize.Comma(int64(l.n)))
	}
	return strings.TrimRight(b.String(), "\n")
}
