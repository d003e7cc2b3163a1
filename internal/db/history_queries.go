package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
)

// parseTimeString handles the formats SQLite hands back for DATETIME columns.
func parseTimeString(s string) (time.Time, bool) {
	formats := []string{sqlTimeFormat, time.RFC3339, "2006-01-02T15:04:05Z"}
	for _, layout := range formats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// InsertLoadHistory records a load attempt.
func (db *DB) InsertLoadHistory(entry *models.LoadHistoryEntry) error {
	query := `
		INSERT INTO load_history (
			load_id, loaded_at, load_trigger, accident_rows, municipality_rows,
			null_coordinates, duration_ms, from_cache, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	loadedAt := entry.LoadedAt
	if loadedAt.IsZero() {
		loadedAt = time.Now()
	}

	fromCache := 0
	if entry.FromCache {
		fromCache = 1
	}

	result, err := db.ExecContext(context.Background(), query,
		nullString(entry.LoadID),
		loadedAt.UTC().Format(sqlTimeFormat),
		entry.Trigger,
		entry.AccidentRows,
		entry.MunicipalityRows,
		entry.NullCoordinates,
		entry.Duration.Milliseconds(),
		fromCache,
		nullString(entry.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to insert load history: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		entry.ID = id
	}

	return nil
}

// GetLoadHistory returns the most recent load attempts, newest first.
func (db *DB) GetLoadHistory(limit int) ([]models.LoadHistoryEntry, error) {
	query := `
		SELECT id, load_id, loaded_at, load_trigger, accident_rows, municipality_rows,
			   null_coordinates, duration_ms, from_cache, error
		FROM load_history
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query load history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []models.LoadHistoryEntry
	for rows.Next() {
		var e models.LoadHistoryEntry
		var loadID, errStr sql.NullString
		var loadedAt string
		var durationMs int64
		var fromCache int

		err := rows.Scan(
			&e.ID,
			&loadID,
			&loadedAt,
			&e.Trigger,
			&e.AccidentRows,
			&e.MunicipalityRows,
			&e.NullCoordinates,
			&durationMs,
			&fromCache,
			&errStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan load history: %w", err)
		}

		e.LoadID = loadID.String
		e.Error = errStr.String
		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.FromCache = fromCache == 1
		if t, ok := parseTimeString(loadedAt); ok {
			e.LoadedAt = t
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// CleanupLoadHistory keeps only the newest keep entries.
func (db *DB) CleanupLoadHistory(keep int) (int64, error) {
	result, err := db.ExecContext(context.Background(), `
		DELETE FROM load_history
		WHERE id NOT IN (SELECT id FROM load_history ORDER BY id DESC LIMIT ?)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up load history: %w", err)
	}
	return result.RowsAffected()
}
