// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/styles"
)

// HeatmapBlocks are Unicode block characters for heatmaps (low to high intensity).
var HeatmapBlocks = []rune{'·', '░', '▒', '▓', '█'}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

var shortDayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// RenderPeriodChart plots accidents per period as an ASCII line chart. The
// caption names the first and last period.
func RenderPeriodChart(periods []models.PeriodCount, width, height int) string {
	if len(periods) == 0 {
		return styles.HelpStyle.Render("No dated accidents")
	}

	width = max(width, 20)
	height = max(height, 3)

	data := make([]float64, len(periods))
	for i, p := range periods {
		data[i] = float64(p.Count)
	}
	// asciigraph needs two points to draw a line.
	if len(data) == 1 {
		data = append(data, data[0])
	}

	caption := periods[0].Label
	if len(periods) > 1 {
		caption += " → " + periods[len(periods)-1].Label
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(0),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Red),
	)
}

// RenderBarChart creates a simple horizontal bar chart.
func RenderBarChart(values []int, labels []string, width int) string {
	if len(values) == 0 {
		return ""
	}

	maxVal := 0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	maxVal = max(maxVal, 1)

	maxLabelLen := 0
	for _, l := range labels {
		maxLabelLen = max(maxLabelLen, lipgloss.Width(l))
	}

	barWidth := max(width-maxLabelLen-12, 10)

	var lines []string
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		paddedLabel := strings.Repeat(" ", maxLabelLen-lipgloss.Width(label)) + label

		barLen := max(v*barWidth/maxVal, 0)
		bar := styles.HeatStyle(float64(v) / float64(maxVal)).Render(strings.Repeat("█", barLen))

		lines = append(lines, fmt.Sprintf("%s │%s %s", paddedLabel, bar, humanize.Comma(int64(v))))
	}

	return strings.Join(lines, "\n")
}

// RenderWeekdayHourHeatmap draws the 7x24 matrix with one row per weekday.
// Each cell is two columns wide so the hour ruler lines up.
func RenderWeekdayHourHeatmap(m *models.WeekdayHourMatrix) string {
	peak := m.Max()

	var b strings.Builder
	b.WriteString("    ")
	for h := 0; h < 24; h += 3 {
		fmt.Fprintf(&b, "%-6d", h)
	}
	b.WriteString("\n")

	dayTotals := m.DayTotals()
	for d := range m {
		b.WriteString(styles.HelpStyle.Render(shortDayNames[d]) + " ")
		for h := range m[d] {
			b.WriteString(heatCell(m[d][h], peak, 2))
		}
		b.WriteString(" " + styles.HelpDescStyle.Render(humanize.Comma(int64(dayTotals[d]))))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func heatCell(count, peak, width int) string {
	if peak <= 0 || count <= 0 {
		return styles.HelpStyle.Render(strings.Repeat(string(HeatmapBlocks[0]), width))
	}
	intensity := float64(count) / float64(peak)
	idx := 1 + int(intensity*float64(len(HeatmapBlocks)-2)+0.5)
	idx = min(idx, len(HeatmapBlocks)-1)
	return styles.HeatStyle(intensity).Render(strings.Repeat(string(HeatmapBlocks[idx]), width))
}

// RenderHourlyProfile renders the per-hour totals as a labelled sparkline.
func RenderHourlyProfile(totals [24]int) string {
	values := make([]float64, len(totals))
	for i, v := range totals {
		values[i] = float64(v)
	}
	return "00 " + RenderSparkline(values, len(values)) + " 23"
}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	var result strings.Builder
	step := max(float64(len(values))/float64(width), 1)

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		val := values[int(float64(i)*step)]
		normalized := int((val / maxVal) * float64(len(sparkChars)-1))
		normalized = max(0, min(normalized, len(sparkChars)-1))
		result.WriteString(styles.HeatStyle(val / maxVal).Render(string(sparkChars[normalized])))
	}

	return result.String()
}

// RenderHeatLegend shows the heat scale from zero to peak.
func RenderHeatLegend(peak int) string {
	var parts []string
	for i := range styles.Heat {
		intensity := float64(i) / float64(len(styles.Heat)-1)
		parts = append(parts, styles.HeatStyle(intensity).Render("■"))
	}
	return fmt.Sprintf("0 %s %s", strings.Join(parts, ""), humanize.Comma(int64(peak)))
}
