// Package loader reads the accident and municipality tables from CSV or
// XLSX files into immutable in-memory records.
package loader

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/j-veylop/accidents-dashboard-tui/internal/logger"
	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
)

// Source kinds recorded in models.SourceInfo.
const (
	KindAccidents      = "accidents"
	KindMunicipalities = "municipalities"
)

// Options configures file parsing.
type Options struct {
	Delimiter rune
	Encoding  string
	Sheet     string // XLSX sheet name; first sheet when empty
}

// Fingerprint identifies the settings that change how a file is parsed.
// Two loads of the same file only agree when their fingerprints match.
func (o Options) Fingerprint() string {
	encoding := strings.ToLower(strings.TrimSpace(o.Encoding))
	switch encoding {
	case "", "utf8":
		encoding = "utf-8"
	}
	delimiter := o.Delimiter
	if delimiter == 0 {
		delimiter = ','
	}
	return fmt.Sprintf("delimiter=%q encoding=%s sheet=%s", delimiter, encoding, o.Sheet)
}

// AccidentTable is the parsed accidents file and its data-quality counts.
type AccidentTable struct {
	Records                 []models.AccidentRecord
	NullCoordinates         int
	MissingMunicipalityCode int
}

// LoadAccidents parses the accidents file. The state and municipality code
// columns are required; the rest are optional.
func LoadAccidents(ctx context.Context, path string, opts Options) (*AccidentTable, error) {
	t, err := readTable(ctx, path, opts)
	if err != nil {
		return nil, err
	}

	idx := indexColumns(t.header)
	if err := idx.require(KindAccidents, colState, colCode); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	out := &AccidentTable{Records: make([]models.AccidentRecord, 0, len(t.rows))}
	for _, row := range t.rows {
		rec := models.AccidentRecord{
			State:            idx.get(row, colState),
			MunicipalityCode: normalizeCode(idx.get(row, colCode)),
			Date:             idx.get(row, colDate),
			Time:             idx.get(row, colTime),
		}

		lat, okLat := parseDecimal(idx.get(row, colLatitude))
		lon, okLon := parseDecimal(idx.get(row, colLongitude))
		if okLat && okLon && validCoordinates(lat, lon) {
			rec.Latitude, rec.Longitude, rec.HasCoordinates = lat, lon, true
		} else {
			out.NullCoordinates++
		}

		if !rec.HasMunicipality() {
			out.MissingMunicipalityCode++
		}
		out.Records = append(out.Records, rec)
	}

	return out, nil
}

// LoadMunicipalities parses the municipality metadata file. Code, state and
// name are required. Missing or invalid population and fleet values load as
// zero and are excluded from rate computations downstream.
func LoadMunicipalities(ctx context.Context, path string, opts Options) ([]models.Municipality, error) {
	t, err := readTable(ctx, path, opts)
	if err != nil {
		return nil, err
	}

	idx := indexColumns(t.header)
	if err := idx.require(KindMunicipalities, colCode, colState, colName); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	out := make([]models.Municipality, 0, len(t.rows))
	invalid := 0
	for _, row := range t.rows {
		m := models.Municipality{
			Code:  normalizeCode(idx.get(row, colCode)),
			State: idx.get(row, colState),
			Name:  idx.get(row, colName),
		}
		if m.Code == "" {
			invalid++
			continue
		}
		if n, ok := parseCount(idx.get(row, colPopulation)); ok {
			m.Population = n
		}
		if n, ok := parseCount(idx.get(row, colFleet)); ok {
			m.Fleet = n
		}
		out = append(out, m)
	}

	if invalid > 0 {
		logger.Warn("municipality rows without a code were skipped", "path", path, "count", invalid)
	}

	return out, nil
}

// Load reads both tables concurrently and assembles a Dataset snapshot.
func Load(ctx context.Context, accidentsPath, municipalitiesPath string, opts Options) (*models.Dataset, error) {
	start := time.Now()

	var (
		accidents      *AccidentTable
		municipalities []models.Municipality
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accidents, err = LoadAccidents(gctx, accidentsPath, opts)
		return err
	})
	g.Go(func() error {
		var err error
		municipalities, err = LoadMunicipalities(gctx, municipalitiesPath, opts)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds := &models.Dataset{
		ID:             uuid.NewString(),
		LoadedAt:       time.Now(),
		Accidents:      accidents.Records,
		Municipalities: municipalities,
		Report: models.LoadReport{
			AccidentRows:            len(accidents.Records),
			MunicipalityRows:        len(municipalities),
			NullCoordinates:         accidents.NullCoordinates,
			MissingMunicipalityCode: accidents.MissingMunicipalityCode,
		},
	}

	for _, src := range []struct {
		path string
		kind string
		rows int
	}{
		{accidentsPath, KindAccidents, len(accidents.Records)},
		{municipalitiesPath, KindMunicipalities, len(municipalities)},
	} {
		info, err := Stat(src.path, src.kind)
		if err != nil {
			return nil, err
		}
		info.Rows = src.rows
		info.Options = opts.Fingerprint()
		ds.Sources = append(ds.Sources, info)
	}

	ds.Report.Duration = time.Since(start)

	if ds.Report.NullCoordinates > 0 {
		logger.Warn("accidents without usable coordinates", "count", ds.Report.NullCoordinates)
	}
	logger.Info("dataset loaded",
		"id", ds.ID,
		"accidents", ds.Report.AccidentRows,
		"municipalities", ds.Report.MunicipalityRows,
		"duration", ds.Report.Duration)

	return ds, nil
}

// Stat describes a source file without reading it.
func Stat(path, kind string) (models.SourceInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return models.SourceInfo{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return models.SourceInfo{
		Path:    path,
		Kind:    kind,
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
	}, nil
}

// normalizeCode drops the ".0" suffix spreadsheets add to integer codes.
func normalizeCode(code string) string {
	return strings.TrimSuffix(strings.TrimSpace(code), ".0")
}
