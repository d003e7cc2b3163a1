package components

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/j-veylop/accidents-dashboard-tui/internal/geo"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/styles"
)

const borderRune = "·"

// RenderDensityMap draws a density grid, one terminal cell per grid cell.
// Accident cells take precedence over outline cells.
func RenderDensityMap(g *geo.DensityGrid) string {
	if g == nil || g.Frame == nil {
		return styles.HelpStyle.Render("No coordinates to plot")
	}

	var b strings.Builder
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			switch {
			case g.Counts[r][c] > 0:
				intensity := g.Intensity(r, c)
				idx := 1 + int(intensity*float64(len(HeatmapBlocks)-2)+0.5)
				idx = min(idx, len(HeatmapBlocks)-1)
				b.WriteString(styles.HeatStyle(intensity).Render(string(HeatmapBlocks[idx])))
			case g.Border[r][c]:
				b.WriteString(styles.BorderCellStyle.Render(borderRune))
			default:
				b.WriteByte(' ')
			}
		}
		if r < g.Rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// DensitySummary describes what the grid shows and what it left out.
func DensitySummary(g *geo.DensityGrid) string {
	if g == nil {
		return ""
	}
	parts := []string{fmt.Sprintf("%s plotted", humanize.Comma(int64(g.Plotted)))}
	if g.NullCoordinates > 0 {
		parts = append(parts, fmt.Sprintf("%s without coordinates", humanize.Comma(int64(g.NullCoordinates))))
	}
	if g.OutsideFrame > 0 {
		parts = append(parts, fmt.Sprintf("%s outside the outline", humanize.Comma(int64(g.OutsideFrame))))
	}
	if g.Frame != nil {
		parts = append(parts, fmt.Sprintf("lon %.2f..%.2f lat %.2f..%.2f",
			g.Frame.Min(0), g.Frame.Max(0), g.Frame.Min(1), g.Frame.Max(1)))
	}
	return strings.Join(parts, " · ")
}
