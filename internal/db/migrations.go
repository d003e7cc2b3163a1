package db

import (
	"context"
	"fmt"

	"github.com/j-veylop/accidents-dashboard-tui/internal/logger"
)

// migrate compares PRAGMA user_version against schemaVersion. The cache only
// holds data that can be rebuilt from the input files, so an outdated layout
// is dropped rather than converted. Load history is kept.
func (db *DB) migrate() error {
	var version int
	if err := db.QueryRowContext(context.Background(), "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version == schemaVersion {
		return nil
	}

	if version != 0 {
		logger.Info("dropping outdated dataset cache", "from", version, "to", schemaVersion)
	}

	queries := []string{
		"DROP TABLE IF EXISTS dataset_sources",
		"DROP TABLE IF EXISTS accidents",
		"DROP TABLE IF EXISTS municipalities",
		"DROP TABLE IF EXISTS boundaries",
		fmt.Sprintf("PRAGMA user_version = %d", schemaVersion),
	}

	for _, query := range queries {
		if _, err := db.ExecContext(context.Background(), query); err != nil {
			return fmt.Errorf("failed to execute %q: %w", query, err)
		}
	}

	return nil
}
