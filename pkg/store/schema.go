package store

import "database/sql"

// schema is applied on every open; the statements are idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		process TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS offsets (
		run_id INTEGER NOT NULL REFERENCES runs(id),
		module TEXT NOT NULL,
		name TEXT NOT NULL,
		rva INTEGER NOT NULL,
		PRIMARY KEY (run_id, module, name)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_offsets_name ON offsets(module, name)`,
}

// CreateSchema initializes the database tables.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
