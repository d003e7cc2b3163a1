package geo

import (
	"math"

	"github.com/twpayne/go-geom"

	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
)

// minSpan keeps a single-point frame from collapsing to zero width.
const minSpan = 0.01

// DensityGrid is a rows x cols raster of accident counts. Row 0 is the
// northern edge.
type DensityGrid struct {
	Counts [][]int
	Border [][]bool
	Frame  *geom.Bounds

	Cols int
	Rows int
	Max  int

	Plotted         int
	NullCoordinates int
	OutsideFrame    int
}

// NewDensityGrid bins accident coordinates into a cols x rows grid. The
// frame is the union of the given outlines, or the bounds of the points
// when there are none. Records without coordinates are counted and skipped.
func NewDensityGrid(accidents []models.AccidentRecord, outlines []*geom.MultiPolygon, cols, rows int) *DensityGrid {
	g := &DensityGrid{
		Cols:   max(cols, 1),
		Rows:   max(rows, 1),
		Counts: make([][]int, max(rows, 1)),
		Border: make([][]bool, max(rows, 1)),
	}
	for r := range g.Counts {
		g.Counts[r] = make([]int, g.Cols)
		g.Border[r] = make([]bool, g.Cols)
	}

	flat := make([]float64, 0, len(accidents)*2)
	for i := range accidents {
		a := &accidents[i]
		if !a.HasCoordinates {
			g.NullCoordinates++
			continue
		}
		flat = append(flat, a.Longitude, a.Latitude)
	}

	frame := geom.NewBounds(geom.XY)
	for _, mp := range outlines {
		if mp != nil && mp.NumPolygons() > 0 {
			frame.Extend(mp)
		}
	}
	if frame.IsEmpty() {
		if len(flat) == 0 {
			return g
		}
		frame.Extend(geom.NewMultiPointFlat(geom.XY, flat))
	}
	g.Frame = pad(frame)

	for i := 0; i+1 < len(flat); i += 2 {
		r, c, ok := g.cell(flat[i], flat[i+1])
		if !ok {
			g.OutsideFrame++
			continue
		}
		g.Counts[r][c]++
		g.Plotted++
		if g.Counts[r][c] > g.Max {
			g.Max = g.Counts[r][c]
		}
	}

	for _, mp := range outlines {
		if mp != nil {
			g.traceBorder(mp)
		}
	}
	return g
}

// pad widens a degenerate frame around its center.
func pad(b *geom.Bounds) *geom.Bounds {
	minX, maxX := b.Min(0), b.Max(0)
	minY, maxY := b.Min(1), b.Max(1)
	if maxX-minX < minSpan {
		c := (minX + maxX) / 2
		minX, maxX = c-minSpan/2, c+minSpan/2
	}
	if maxY-minY < minSpan {
		c := (minY + maxY) / 2
		minY, maxY = c-minSpan/2, c+minSpan/2
	}
	return geom.NewBounds(geom.XY).Set(minX, minY, maxX, maxY)
}

// cell maps a longitude/latitude pair to a grid position.
func (g *DensityGrid) cell(lon, lat float64) (row, col int, ok bool) {
	if g.Frame == nil || !g.Frame.OverlapsPoint(geom.XY, geom.Coord{lon, lat}) {
		return 0, 0, false
	}
	minX, maxX := g.Frame.Min(0), g.Frame.Max(0)
	minY, maxY := g.Frame.Min(1), g.Frame.Max(1)

	col = int((lon - minX) / (maxX - minX) * float64(g.Cols))
	row = int((maxY - lat) / (maxY - minY) * float64(g.Rows))
	return min(row, g.Rows-1), min(col, g.Cols-1), true
}

// traceBorder marks every cell crossed by a ring edge.
func (g *DensityGrid) traceBorder(mp *geom.MultiPolygon) {
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		for j := 0; j < poly.NumLinearRings(); j++ {
			coords := poly.LinearRing(j).FlatCoords()
			for k := 0; k+3 < len(coords); k += 2 {
				g.traceSegment(coords[k], coords[k+1], coords[k+2], coords[k+3])
			}
		}
	}
}

func (g *DensityGrid) traceSegment(x0, y0, x1, y1 float64) {
	r0, c0, ok0 := g.cell(x0, y0)
	r1, c1, ok1 := g.cell(x1, y1)
	if !ok0 || !ok1 {
		return
	}
	steps := max(abs(r1-r0), abs(c1-c0), 1)
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		r, c, ok := g.cell(x0+(x1-x0)*t, y0+(y1-y0)*t)
		if ok {
			g.Border[r][c] = true
		}
	}
}

// Intensity returns the count at (row, col) scaled to [0, 1] on a log
// scale so a single hot spot does not wash out the rest of the map.
func (g *DensityGrid) Intensity(row, col int) float64 {
	if g.Max == 0 || g.Counts[row][col] == 0 {
		return 0
	}
	return math.Log1p(float64(g.Counts[row][col])) / math.Log1p(float64(g.Max))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
