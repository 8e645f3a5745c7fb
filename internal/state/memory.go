package state

import (
	"context"
	"sync"
	"time"

	"heaterwatch/internal/types"
)

// MemoryStore is an in-process Store for the local runner and tests. It
// counts writes so callers can assert that read-only paths never persist.
type MemoryStore struct {
	mu     sync.Mutex
	record *Record
	writes int
}

// NewMemoryStore returns a MemoryStore, optionally pre-seeded with a record.
func NewMemoryStore(initial *Record) *MemoryStore {
	s := &MemoryStore{}
	if initial != nil {
		r := *initial
		s.record = &r
	}
	return s
}

// Get returns a copy of the current record, or nil.
func (s *MemoryStore) Get(_ context.Context) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return nil, nil
	}
	r := *s.record
	return &r, nil
}

// Put replaces the record.
func (s *MemoryStore) Put(_ context.Context, mode types.Mode, at time.Time) error {
	if !mode.Valid() {
		return types.NewStateStoreError("refusing to persist invalid mode", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = &Record{Mode: mode, UpdatedAt: at}
	s.writes++
	return nil
}

// Writes returns how many times Put succeeded.
func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Probe always succeeds.
func (s *MemoryStore) Probe(context.Context) error { return nil }
