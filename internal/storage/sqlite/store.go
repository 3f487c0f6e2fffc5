// Package sqlite is a SQLite-backed UsageStore.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/chasedovey/tokencounter/internal/storage"
)

// Store is a SQLite implementation of storage.UsageStore.
type Store struct {
	db *sql.DB
}

var _ storage.UsageStore = (*Store)(nil)

// New creates a new SQLite store at the given path.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS usage_records (
			id TEXT PRIMARY KEY,
			principal TEXT NOT NULL,
			route TEXT NOT NULL,
			model TEXT NOT NULL,
			text_count INTEGER NOT NULL,
			total_tokens INTEGER NOT NULL,
			duration_ms REAL NOT NULL,
			status INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_usage_created ON usage_records(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_usage_model ON usage_records(model)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) RecordUsage(ctx context.Context, rec *storage.UsageRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage_records
			(id, principal, route, model, text_count, total_tokens, duration_ms, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Principal, rec.Route, rec.Model,
		rec.TextCount, rec.TotalTokens, rec.DurationMs, rec.Status, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting usage record: %w", err)
	}
	return nil
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]*storage.UsageRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, principal, route, model, text_count, total_tokens, duration_ms, status, created_at
		FROM usage_records
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying usage records: %w", err)
	}
	defer rows.Close()

	var records []*storage.UsageRecord
	for rows.Next() {
		rec := &storage.UsageRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.Principal, &rec.Route, &rec.Model,
			&rec.TextCount, &rec.TotalTokens, &rec.DurationMs, &rec.Status, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning usage record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
