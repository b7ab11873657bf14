// Package storage persists reading history, sync runs and settings.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwulff/glucose-go/internal/bloodsugar"
)

// Store is the interface for persistent storage.
type Store interface {
	// Readings
	SaveReadings(ctx context.Context, syncID string, readings []bloodsugar.Reading) (int, error)
	QueryReadings(ctx context.Context, since, until time.Time) ([]bloodsugar.Reading, error)
	LatestReadings(ctx context.Context, limit int) ([]bloodsugar.Reading, error)
	DeleteOldReadings(ctx context.Context, before time.Time) (int64, error)
	CountReadings(ctx context.Context) (int, error)

	// Sync runs
	SaveSyncRun(ctx context.Context, run *SyncRun) error
	LastSyncRun(ctx context.Context) (*SyncRun, error)

	// Configuration
	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
	DeleteConfig(ctx context.Context, key string) error

	// Size returns the bytes used by the database.
	Size(ctx context.Context) (uint64, error)

	// Lifecycle
	Close() error
}

// SyncRun records one fetch of readings from the sensor source.
type SyncRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Fetched    int
	Stored     int
	Error      string
}

// NewSyncRun creates a sync run starting now.
func NewSyncRun() *SyncRun {
	return &SyncRun{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}
}

// Finish marks the run finished with the given outcome.
func (r *SyncRun) Finish(fetched, stored int, err error) {
	r.FinishedAt = time.Now()
	r.Fetched = fetched
	r.Stored = stored
	if err != nil {
		r.Error = err.Error()
	}
}

// ErrNotFound is returned when a record is not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e ErrNotFound) Error() string {
	return e.Resource + " not found: " + e.ID
}

// IsNotFound checks if an error is, or wraps, a not found error.
func IsNotFound(err error) bool {
	var nf ErrNotFound
	return errors.As(err, &nf)
}
