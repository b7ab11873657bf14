// Package sqlite provides a SQLite implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jwulff/glucose-go/internal/bloodsugar"
	"github.com/jwulff/glucose-go/internal/storage"

	_ "modernc.org/sqlite"
)

// Store is a SQLite implementation of storage.Store.
type Store struct {
	db *sql.DB
}

// NewMemoryStore creates an in-memory SQLite store.
func NewMemoryStore() (*Store, error) {
	return newStore(":memory:")
}

// NewFileStore creates a file-based SQLite store.
func NewFileStore(path string) (*Store, error) {
	return newStore(path)
}

func newStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is its own database, and SQLite
	// serialises writers anyway.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Reading methods

// SaveReadings upserts readings keyed by timestamp and returns how many were written.
func (s *Store) SaveReadings(ctx context.Context, syncID string, readings []bloodsugar.Reading) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO readings (timestamp_ms, value, trend, sync_id)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, r := range readings {
		if err := r.Value.Validate(); err != nil {
			return 0, fmt.Errorf("reading at %s: %w", r.Timestamp.Format(time.RFC3339), err)
		}
		if _, err := stmt.ExecContext(ctx, r.Timestamp.UnixMilli(), int(r.Value), r.Trend, syncID); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(readings), nil
}

// QueryReadings returns readings in [since, until], oldest first.
func (s *Store) QueryReadings(ctx context.Context, since, until time.Time) ([]bloodsugar.Reading, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp_ms, value, trend FROM readings
		WHERE timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`, since.UnixMilli(), until.UnixMilli())
	if err != nil {
		return nil, err
	}
	return scanReadings(rows)
}

// LatestReadings returns up to limit readings, newest first.
func (s *Store) LatestReadings(ctx context.Context, limit int) ([]bloodsugar.Reading, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp_ms, value, trend FROM readings
		ORDER BY timestamp_ms DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	return scanReadings(rows)
}

func scanReadings(rows *sql.Rows) ([]bloodsugar.Reading, error) {
	defer rows.Close()

	var readings []bloodsugar.Reading
	for rows.Next() {
		var ms int64
		var value int
		var r bloodsugar.Reading
		if err := rows.Scan(&ms, &value, &r.Trend); err != nil {
			return nil, err
		}
		r.Timestamp = time.UnixMilli(ms).UTC()
		r.Value = bloodsugar.Value(value)
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

// DeleteOldReadings removes readings older than before.
func (s *Store) DeleteOldReadings(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM readings WHERE timestamp_ms < ?", before.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) CountReadings(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM readings").Scan(&count)
	return count, err
}

// Sync run methods

func (s *Store) SaveSyncRun(ctx context.Context, run *storage.SyncRun) error {
	var finished sql.NullInt64
	if !run.FinishedAt.IsZero() {
		finished = sql.NullInt64{Int64: run.FinishedAt.UnixMilli(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sync_runs (id, started_at, finished_at, fetched, stored, last_error)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt.UnixMilli(), finished, run.Fetched, run.Stored, run.Error)
	return err
}

func (s *Store) LastSyncRun(ctx context.Context) (*storage.SyncRun, error) {
	var run storage.SyncRun
	var started int64
	var finished sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, fetched, stored, last_error
		FROM sync_runs ORDER BY started_at DESC LIMIT 1
	`).Scan(&run.ID, &started, &finished, &run.Fetched, &run.Stored, &run.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound{Resource: "sync_run", ID: "latest"}
	}
	if err != nil {
		return nil, err
	}

	run.StartedAt = time.UnixMilli(started).UTC()
	if finished.Valid {
		run.FinishedAt = time.UnixMilli(finished.Int64).UTC()
	}
	return &run, nil
}

// Config methods

func (s *Store) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrNotFound{Resource: "config", ID: key}
	}
	return value, err
}

func (s *Store) SetConfig(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO config (key, value, updated_at)
		VALUES (?, ?, ?)
	`, key, value, time.Now().UnixMilli())
	return err
}

func (s *Store) DeleteConfig(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM config WHERE key = ?", key)
	return err
}

// Size returns page_count * page_size.
func (s *Store) Size(ctx context.Context) (uint64, error) {
	var pages, pageSize uint64
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pages); err != nil {
		return 0, fmt.Errorf("failed to read page count: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0, fmt.Errorf("failed to read page size: %w", err)
	}
	return pages * pageSize, nil
}

// Verify interface compliance
var _ storage.Store = (*Store)(nil)
