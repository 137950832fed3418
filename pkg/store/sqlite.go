package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/trueshadow1995/DeadLock-Dumper/pkg/types"
)

// SQLiteStore implements Store on a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) a SQLite-backed store at path.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// AddRun persists a complete offset table and returns the run id.
func (s *SQLiteStore) AddRun(process string, table types.Table) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		"INSERT INTO runs (process, created_at) VALUES (?, ?)",
		process, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	for module, offsets := range table {
		for name, rva := range offsets {
			_, err := tx.Exec(
				"INSERT INTO offsets (run_id, module, name, rva) VALUES (?, ?, ?, ?)",
				runID, module, name, int64(rva),
			)
			if err != nil {
				return 0, fmt.Errorf("inserting offset %s/%s: %w", module, name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// GetRun retrieves the offset table of a run.
func (s *SQLiteStore) GetRun(id int64) (types.Table, error) {
	rows, err := s.db.Query(
		"SELECT module, name, rva FROM offsets WHERE run_id = ?", id,
	)
	if err != nil {
		return nil, fmt.Errorf("querying offsets: %w", err)
	}
	defer rows.Close()

	table := make(types.Table)
	for rows.Next() {
		var module, name string
		var rva int64
		if err := rows.Scan(&module, &name, &rva); err != nil {
			return nil, fmt.Errorf("scanning offset: %w", err)
		}
		if table[module] == nil {
			table[module] = make(types.OffsetMap)
		}
		table[module][name] = types.Rva(rva)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating offsets: %w", err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("run %d not found", id)
	}
	return table, nil
}

// ListRuns returns all persisted runs, newest first.
func (s *SQLiteStore) ListRuns() ([]RunInfo, error) {
	rows, err := s.db.Query(`
		SELECT r.id, r.process, r.created_at, COUNT(o.name)
		FROM runs r LEFT JOIN offsets o ON o.run_id = r.id
		GROUP BY r.id ORDER BY r.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var info RunInfo
		var created string
		if err := rows.Scan(&info.ID, &info.Process, &created, &info.Offsets); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		info.CreatedAt, err = time.Parse(time.RFC3339, created)
		if err != nil {
			return nil, fmt.Errorf("parsing run timestamp: %w", err)
		}
		runs = append(runs, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
