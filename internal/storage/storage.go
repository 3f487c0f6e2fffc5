// Package storage defines the usage audit store. Records carry counts and
// timings only; the counted text itself is never persisted.
package storage

import (
	"context"
	"time"
)

// UsageRecord is one counting request's audit row.
type UsageRecord struct {
	ID          string
	Principal   string
	Route       string
	Model       string
	TextCount   int
	TotalTokens int
	DurationMs  float64
	Status      int
	CreatedAt   time.Time
}

// UsageStore records and queries usage audit rows. Recording is
// best-effort from the handler's perspective; failures are logged, never
// surfaced to the client.
type UsageStore interface {
	RecordUsage(ctx context.Context, rec *UsageRecord) error
	ListRecent(ctx context.Context, limit int) ([]*UsageRecord, error)
	Close() error
}

// Noop discards all records. Used when storage is disabled.
type Noop struct{}

func (Noop) RecordUsage(ctx context.Context, rec *UsageRecord) error { return nil }

func (Noop) ListRecent(ctx context.Context, limit int) ([]*UsageRecord, error) {
	return nil, nil
}

func (Noop) Close() error { return nil }
