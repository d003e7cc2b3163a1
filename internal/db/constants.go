package db

const (
	// schemaVersion is stored in PRAGMA user_version. Bump it whenever a
	// cached table changes shape.
	schemaVersion = 3

	// sqlTimeFormat matches what SQLite's date functions expect.
	sqlTimeFormat = "2006-01-02 15:04:05"
)
