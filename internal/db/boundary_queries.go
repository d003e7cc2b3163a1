package db

import (
	"context"
	"fmt"

	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
)

// SaveBoundaries replaces the cached state outlines. Each value is an
// encoded geometry keyed by state code.
func (db *DB) SaveBoundaries(src models.SourceInfo, outlines map[string][]byte) error {
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM boundaries"); err != nil {
		return fmt.Errorf("failed to clear boundaries: %w", err)
	}

	for state, geom := range outlines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO boundaries (state, geom, source_path, source_size, source_mod_time)
			VALUES (?, ?, ?, ?, ?)
		`, state, geom, src.Path, src.Size, src.ModTime.UnixNano())
		if err != nil {
			return fmt.Errorf("failed to insert boundary for %s: %w", state, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit boundaries: %w", err)
	}
	return nil
}

// GetBoundaries returns cached outlines when they were built from a file
// with the same path, size and modification time. A nil map means the cache
// is stale or empty.
func (db *DB) GetBoundaries(src models.SourceInfo) (map[string][]byte, error) {
	rows, err := db.QueryContext(context.Background(), `
		SELECT state, geom
		FROM boundaries
		WHERE source_path = ? AND source_size = ? AND source_mod_time = ?
	`, src.Path, src.Size, src.ModTime.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to query boundaries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var outlines map[string][]byte
	for rows.Next() {
		var state string
		var geom []byte
		if err := rows.Scan(&state, &geom); err != nil {
			return nil, fmt.Errorf("failed to scan boundary: %w", err)
		}
		if outlines == nil {
			outlines = make(map[string][]byte)
		}
		outlines[state] = geom
	}

	return outlines, rows.Err()
}
