// Package store persists dump results so offsets can be compared across game
// builds.
package store

import (
	"fmt"
	"time"

	"github.com/trueshadow1995/DeadLock-Dumper/pkg/types"
)

// RunInfo describes one persisted dump run.
type RunInfo struct {
	ID        int64
	Process   string
	CreatedAt time.Time
	Offsets   int // total named offsets in the run
}

// Store persists offset tables. The interface abstracts the backend so tests
// can run against the in-memory implementation.
type Store interface {
	// AddRun persists a complete offset table and returns the run id.
	AddRun(process string, table types.Table) (int64, error)

	// GetRun retrieves the offset table of a run.
	GetRun(id int64) (types.Table, error)

	// ListRuns returns all persisted runs, newest first.
	ListRuns() ([]RunInfo, error)

	// Close releases the backend.
	Close() error
}

// Config for store initialization.
type Config struct {
	// Path is the database file path. ":memory:" selects the in-memory
	// store.
	Path string
}

// New creates a Store for cfg.
func New(cfg Config) (Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if cfg.Path == ":memory:" {
		return NewMemory(), nil
	}
	return NewSQLite(cfg.Path)
}
