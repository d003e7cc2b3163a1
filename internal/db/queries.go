package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/j-veylop/accidents-dashboard-tui/internal/logger"
	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
)

// ErrCacheEmpty is returned by LoadDataset when nothing has been cached yet.
var ErrCacheEmpty = errors.New("dataset cache is empty")

// SaveDataset replaces the cached tables with the given snapshot in a single
// transaction.
func (db *DB) SaveDataset(ds *models.Dataset) error {
	ctx := context.Background()
	start := time.Now()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"accidents", "municipalities", "dataset_sources"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	accStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO accidents (state, municipality_code, date, time, latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare accident insert: %w", err)
	}
	defer func() { _ = accStmt.Close() }()

	for i := range ds.Accidents {
		a := &ds.Accidents[i]
		var lat, lon sql.NullFloat64
		if a.HasCoordinates {
			lat = sql.NullFloat64{Float64: a.Latitude, Valid: true}
			lon = sql.NullFloat64{Float64: a.Longitude, Valid: true}
		}
		if _, err := accStmt.ExecContext(ctx, a.State, a.MunicipalityCode, a.Date, a.Time, lat, lon); err != nil {
			return fmt.Errorf("failed to insert accident: %w", err)
		}
	}

	munStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO municipalities (code, state, name, population, fleet)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare municipality insert: %w", err)
	}
	defer func() { _ = munStmt.Close() }()

	for _, m := range ds.Municipalities {
		if _, err := munStmt.ExecContext(ctx, m.Code, m.State, m.Name, m.Population, m.Fleet); err != nil {
			return fmt.Errorf("failed to insert municipality: %w", err)
		}
	}

	for _, src := range ds.Sources {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO dataset_sources (kind, path, size, mod_time, row_count, options, load_id, loaded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, src.Kind, src.Path, src.Size, src.ModTime.UnixNano(), src.Rows, src.Options, ds.ID, ds.LoadedAt.UTC().Format(sqlTimeFormat))
		if err != nil {
			return fmt.Errorf("failed to insert source %s: %w", src.Kind, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dataset: %w", err)
	}

	logger.Debug("dataset cached",
		"accidents", len(ds.Accidents),
		"municipalities", len(ds.Municipalities),
		"duration", time.Since(start))
	return nil
}

// GetSources returns the fingerprints of the cached input files.
func (db *DB) GetSources() ([]models.SourceInfo, error) {
	query := `
		SELECT kind, path, size, mod_time, row_count, options
		FROM dataset_sources
		ORDER BY kind
	`

	rows, err := db.QueryContext(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sources []models.SourceInfo
	for rows.Next() {
		var src models.SourceInfo
		var modTime int64
		if err := rows.Scan(&src.Kind, &src.Path, &src.Size, &modTime, &src.Rows, &src.Options); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		src.ModTime = time.Unix(0, modTime)
		src.FromCache = true
		sources = append(sources, src)
	}

	return sources, rows.Err()
}

// SourcesMatch reports whether every given file has the same path, size,
// modification time and parser options as the cached copy.
func (db *DB) SourcesMatch(current []models.SourceInfo) (bool, error) {
	cached, err := db.GetSources()
	if err != nil {
		return false, err
	}
	if len(cached) == 0 || len(cached) != len(current) {
		return false, nil
	}

	byKind := make(map[string]models.SourceInfo, len(cached))
	for _, src := range cached {
		byKind[src.Kind] = src
	}
	for _, src := range current {
		c, ok := byKind[src.Kind]
		if !ok || c.Path != src.Path || c.Size != src.Size || !c.ModTime.Equal(src.ModTime) ||
			c.Options != src.Options {
			return false, nil
		}
	}
	return true, nil
}

// LoadDataset rebuilds a Dataset from the cached tables, preserving the
// original row order.
func (db *DB) LoadDataset() (*models.Dataset, error) {
	ctx := context.Background()

	sources, err := db.GetSources()
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, ErrCacheEmpty
	}

	var loadID, loadedAt string
	err = db.QueryRowContext(ctx, "SELECT load_id, loaded_at FROM dataset_sources LIMIT 1").Scan(&loadID, &loadedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to read load id: %w", err)
	}

	ds := &models.Dataset{
		ID:      loadID,
		Sources: sources,
	}
	if t, ok := parseTimeString(loadedAt); ok {
		ds.LoadedAt = t
	}

	if ds.Accidents, ds.Report.NullCoordinates, ds.Report.MissingMunicipalityCode, err = db.loadAccidents(ctx); err != nil {
		return nil, err
	}
	if ds.Municipalities, err = db.loadMunicipalities(ctx); err != nil {
		return nil, err
	}

	ds.Report.AccidentRows = len(ds.Accidents)
	ds.Report.MunicipalityRows = len(ds.Municipalities)
	return ds, nil
}

func (db *DB) loadAccidents(ctx context.Context) (records []models.AccidentRecord, nullCoords, missingCodes int, err error) {
	rows, err := db.QueryContext(ctx, `
		SELECT state, municipality_code, date, time, latitude, longitude
		FROM accidents
		ORDER BY id
	`)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to query cached accidents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var a models.AccidentRecord
		var date, clock sql.NullString
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&a.State, &a.MunicipalityCode, &date, &clock, &lat, &lon); err != nil {
			return nil, 0, 0, fmt.Errorf("failed to scan accident: %w", err)
		}
		a.Date, a.Time = date.String, clock.String
		if lat.Valid && lon.Valid {
			a.Latitude, a.Longitude, a.HasCoordinates = lat.Float64, lon.Float64, true
		} else {
			nullCoords++
		}
		if !a.HasMunicipality() {
			missingCodes++
		}
		records = append(records, a)
	}

	return records, nullCoords, missingCodes, rows.Err()
}

func (db *DB) loadMunicipalities(ctx context.Context) ([]models.Municipality, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT code, state, name, population, fleet
		FROM municipalities
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached municipalities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Municipality
	for rows.Next() {
		var m models.Municipality
		var state, name sql.NullString
		if err := rows.Scan(&m.Code, &state, &name, &m.Population, &m.Fleet); err != nil {
			return nil, fmt.Errorf("failed to scan municipality: %w", err)
		}
		m.State, m.Name = state.String, name.String
		out = append(out, m)
	}

	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
