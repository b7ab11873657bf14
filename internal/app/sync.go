package app

import (
	"context"
	"fmt"

	"github.com/jwulff/glucose-go/internal/storage"
)

// Sync fetches the configured history window and stores it.
func (a *App) Sync(ctx context.Context) (*storage.SyncRun, error) {
	source, err := a.newSource()
	if err != nil {
		return nil, err
	}
	store, closeStore, err := a.openStore()
	if err != nil {
		return nil, err
	}
	defer closeStore()

	run, err := a.syncInto(ctx, store, source)
	if err != nil {
		return run, err
	}

	fmt.Fprintf(a.Out, "%s\n", a.localizer.Sprintf("Stored %d of %d readings", run.Stored, run.Fetched))
	return run, nil
}

// syncInto runs one fetch-and-store cycle and records it as a sync run.
func (a *App) syncInto(ctx context.Context, store storage.Store, source ReadingSource) (*storage.SyncRun, error) {
	run := storage.NewSyncRun()
	logger := a.Logger.With().Str("sync_id", run.ID).Logger()

	readings, err := source.FetchReadings(ctx, a.Config.Watch.MaxCount, a.Config.Watch.HistoryMinutes)
	stored := 0
	if err == nil {
		stored, err = store.SaveReadings(ctx, run.ID, readings)
	}
	run.Finish(len(readings), stored, err)

	if saveErr := store.SaveSyncRun(ctx, run); saveErr != nil {
		logger.Warn().Err(saveErr).Msg("failed to record sync run")
	}
	if err != nil {
		logger.Error().Err(err).Msg("sync failed")
		return run, fmt.Errorf("sync: %w", err)
	}

	if a.Config.Storage.Retention > 0 {
		cutoff := a.now().Add(-a.Config.Storage.Retention)
		deleted, err := store.DeleteOldReadings(ctx, cutoff)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to prune old readings")
		} else if deleted > 0 {
			logger.Debug().Int64("deleted", deleted).Msg("pruned old readings")
		}
	}

	event := logger.Info().Int("fetched", run.Fetched).Int("stored", run.Stored)
	if total, err := store.CountReadings(ctx); err == nil {
		event = event.Int("total", total)
	}
	event.Msg("sync complete")
	return run, nil
}
