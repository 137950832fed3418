package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/trueshadow1995/DeadLock-Dumper/pkg/types"
)

// MemoryStore implements Store in process memory. Used for tests and for
// runs that only print results.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	runs   []RunInfo
	tables map[int64]types.Table
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		tables: make(map[int64]types.Table),
	}
}

// AddRun persists a complete offset table and returns the run id.
func (s *MemoryStore) AddRun(process string, table types.Table) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	// Copy so later caller mutations cannot leak into the store.
	stored := make(types.Table, len(table))
	count := 0
	for module, offsets := range table {
		m := make(types.OffsetMap, len(offsets))
		for name, rva := range offsets {
			m[name] = rva
			count++
		}
		stored[module] = m
	}

	s.tables[id] = stored
	s.runs = append(s.runs, RunInfo{
		ID:        id,
		Process:   process,
		CreatedAt: time.Now().UTC(),
		Offsets:   count,
	})
	return id, nil
}

// GetRun retrieves the offset table of a run.
func (s *MemoryStore) GetRun(id int64) (types.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	table, ok := s.tables[id]
	if !ok {
		return nil, fmt.Errorf("run %d not found", id)
	}
	return table, nil
}

// ListRuns returns all persisted runs, newest first.
func (s *MemoryStore) ListRuns() ([]RunInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]RunInfo, len(s.runs))
	for i, info := range s.runs {
		out[len(s.runs)-1-i] = info
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
