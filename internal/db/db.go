// Package db manages the database connection
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"
	// sqlite driver
)

// DB wraps the SQL database connection with application-specific methods.
// It caches parsed input tables so unchanged files are not re-parsed on
// startup. Computed results are never stored.
type DB struct {
	*sql.DB
	path string
}

// New creates a new database connection and initializes the schema.
func New(path string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Open database connection
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		DB:   sqlDB,
		path: path,
	}

	// Configure database
	if err := db.configure(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	// Drop cache tables written by an older layout
	if err := db.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate cache: %w", err)
	}

	// Create schema
	if err := db.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// configure sets up database pragmas for optimal performance.
func (db *DB) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-64000", // 64MB cache
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

func (db *DB) createSchema() error {
	if err := db.createSourcesTable(); err != nil {
		return err
	}
	if err := db.createAccidentsTable(); err != nil {
		return err
	}
	if err := db.createMunicipalitiesTable(); err != nil {
		return err
	}
	if err := db.createBoundariesTable(); err != nil {
		return err
	}
	return db.createLoadHistoryTable()
}

func (db *DB) createSourcesTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS dataset_sources (
		kind TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		size INTEGER NOT NULL,
		mod_time INTEGER NOT NULL,
		row_count INTEGER DEFAULT 0,
		options TEXT NOT NULL DEFAULT '',
		load_id TEXT NOT NULL,
		loaded_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createAccidentsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS accidents (
		id INTEGER PRIMARY KEY,
		state TEXT NOT NULL,
		municipality_code TEXT NOT NULL,
		date TEXT,
		time TEXT,
		latitude REAL,
		longitude REAL
	);
	CREATE INDEX IF NOT EXISTS idx_accidents_state ON accidents(state);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createMunicipalitiesTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS municipalities (
		id INTEGER PRIMARY KEY,
		code TEXT NOT NULL,
		state TEXT,
		name TEXT,
		population INTEGER DEFAULT 0,
		fleet INTEGER DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_municipalities_code ON municipalities(code);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createBoundariesTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS boundaries (
		state TEXT PRIMARY KEY,
		geom BLOB NOT NULL,
		source_path TEXT NOT NULL,
		source_size INTEGER NOT NULL,
		source_mod_time INTEGER NOT NULL
	);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createLoadHistoryTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS load_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		load_id TEXT,
		loaded_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		load_trigger TEXT NOT NULL DEFAULT 'startup',
		accident_rows INTEGER DEFAULT 0,
		municipality_rows INTEGER DEFAULT 0,
		null_coordinates INTEGER DEFAULT 0,
		duration_ms INTEGER DEFAULT 0,
		from_cache INTEGER DEFAULT 0,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_load_history_loaded_at ON load_history(loaded_at);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

// Close closes the database connection gracefully.
func (db *DB) Close() error {
	// Checkpoint WAL before closing
	_, _ = db.ExecContext(context.Background(), "PRAGMA wal_checkpoint(TRUNCATE)")
	return db.DB.Close()
}

// Vacuum performs database maintenance to reclaim space.
func (db *DB) Vacuum() error {
	_, err := db.ExecContext(context.Background(), "VACUUM")
	return err
}
