// Package geo reads state outlines from shapefiles and projects accident
// coordinates onto a character grid for the map view.
package geo

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/j-veylop/accidents-dashboard-tui/internal/logger"
	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
)

// SRID of the IBGE boundary files (SIRGAS 2000 is close enough to WGS84 for
// a terminal map).
const SRID = 4326

// stateFields are the attribute names IBGE uses for the UF code.
var stateFields = []string{"SIGLA_UF", "SIGLA", "UF", "SG_UF"}

// Outlines maps a state code to its boundary.
type Outlines map[string]*geom.MultiPolygon

// LoadBoundaries reads a polygon shapefile and groups its shapes by state.
// Municipality-level files work too; every municipality polygon is pushed
// into its state's outline.
func LoadBoundaries(path string) (Outlines, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open shapefile %s: %w", path, err)
	}
	defer func() { _ = reader.Close() }()

	stateIdx := -1
	for _, name := range stateFields {
		if stateIdx = fieldIndex(reader, name); stateIdx >= 0 {
			break
		}
	}
	if stateIdx < 0 {
		return nil, fmt.Errorf("shapefile %s has no state field (want one of %s)",
			path, strings.Join(stateFields, ", "))
	}

	outlines := make(Outlines)
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			skipped++
			continue
		}

		state := strings.ToUpper(strings.TrimSpace(strings.TrimRight(reader.Attribute(stateIdx), "\x00")))
		if state == "" {
			skipped++
			continue
		}

		mp, ok := outlines[state]
		if !ok {
			mp = geom.NewMultiPolygon(geom.XY).SetSRID(SRID)
			outlines[state] = mp
		}
		if err := appendPolygon(mp, poly); err != nil {
			logger.Debug("skipping malformed polygon", "state", state, "error", err)
			skipped++
		}
	}

	if skipped > 0 {
		logger.Warn("skipped shapefile records", "path", path, "skipped", skipped)
	}
	if len(outlines) == 0 {
		return nil, fmt.Errorf("shapefile %s contains no usable polygons", path)
	}
	return outlines, nil
}

// appendPolygon pushes each ring of a shapefile polygon into mp.
func appendPolygon(mp *geom.MultiPolygon, p *shp.Polygon) error {
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if end-start < 4 {
			return fmt.Errorf("ring %d has %d points", i, end-start)
		}

		flat := make([]float64, 0, (end-start)*2)
		for _, pt := range p.Points[start:end] {
			flat = append(flat, pt.X, pt.Y)
		}

		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			return err
		}
		if err := mp.Push(poly); err != nil {
			return err
		}
	}
	return nil
}

func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// States returns the sorted state codes that have an outline.
func (o Outlines) States() []string {
	states := make([]string, 0, len(o))
	for s := range o {
		states = append(states, s)
	}
	slices.Sort(states)
	return states
}

// Select returns the outlines shown for a filter: one state, or all of them.
func (o Outlines) Select(filter models.StateFilter) []*geom.MultiPolygon {
	if filter.IsAll() {
		out := make([]*geom.MultiPolygon, 0, len(o))
		for _, s := range o.States() {
			out = append(out, o[s])
		}
		return out
	}
	if mp, ok := o[string(filter)]; ok {
		return []*geom.MultiPolygon{mp}
	}
	return nil
}

// Encode serializes every outline as little-endian EWKB for the cache.
func (o Outlines) Encode() (map[string][]byte, error) {
	out := make(map[string][]byte, len(o))
	for state, mp := range o {
		data, err := ewkb.Marshal(mp, ewkb.NDR)
		if err != nil {
			return nil, fmt.Errorf("failed to encode outline for %s: %w", state, err)
		}
		out[state] = data
	}
	return out, nil
}

// DecodeOutlines reverses Encode.
func DecodeOutlines(encoded map[string][]byte) (Outlines, error) {
	out := make(Outlines, len(encoded))
	for state, data := range encoded {
		g, err := ewkb.Unmarshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode outline for %s: %w", state, err)
		}
		mp, ok := g.(*geom.MultiPolygon)
		if !ok {
			return nil, fmt.Errorf("outline for %s is %T, want multipolygon", state, g)
		}
		out[state] = mp
	}
	return out, nil
}
