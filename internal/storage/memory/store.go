// Package memory is an in-memory UsageStore for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/chasedovey/tokencounter/internal/storage"
)

// Store is an in-memory implementation of storage.UsageStore.
type Store struct {
	mu      sync.RWMutex
	records []*storage.UsageRecord
	// cap bounds retained records; oldest are dropped first.
	cap int
}

// New creates a new in-memory store retaining at most 1000 records.
func New() *Store {
	return &Store{cap: 1000}
}

func (s *Store) RecordUsage(ctx context.Context, rec *storage.UsageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	s.records = append(s.records, rec)
	if len(s.records) > s.cap {
		s.records = s.records[len(s.records)-s.cap:]
	}
	return nil
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]*storage.UsageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.records) {
		limit = len(s.records)
	}

	// Newest first
	result := make([]*storage.UsageRecord, 0, limit)
	for i := len(s.records) - 1; i >= len(s.records)-limit; i-- {
		result = append(result, s.records[i])
	}
	return result, nil
}

func (s *Store) Close() error { return nil }
