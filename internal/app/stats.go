package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/dustin/go-humanize"

	"github.com/jwulff/glucose-go/internal/bloodsugar"
	"github.com/jwulff/glucose-go/internal/i18n"
	"github.com/jwulff/glucose-go/internal/storage"
)

// ParseSince parses a point in time such as "2026-01-20" or "20.01.2026 08:00"
// in the local zone. Ambiguous numeric dates follow the display locale.
func (a *App) ParseSince(s string) (time.Time, error) {
	t, err := dateparse.ParseIn(strings.TrimSpace(s), time.Local, dateparse.PreferMonthFirst(!i18n.DayFirst(a.requested)))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// Stats summarises the readings since opts.Since, or of the last
// opts.Window: count, average, time in range and the size of the database.
func (a *App) Stats(ctx context.Context, opts StatsOptions) error {
	now := a.now()
	since := opts.Since
	if since.IsZero() {
		if opts.Window <= 0 {
			return fmt.Errorf("window must be greater than zero")
		}
		since = now.Add(-opts.Window)
	}
	if !since.Before(now) {
		return fmt.Errorf("since must be in the past")
	}

	store, closeStore, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	readings, err := store.QueryReadings(ctx, since, now)
	if err != nil {
		return err
	}
	settings, err := a.alarmSettings(ctx, store)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.Out, i18n.PluralizeLocalized(a.localizer, len(readings), "%d reading", "%d readings"))

	if len(readings) > 0 {
		var below, within, above, sum int
		for _, r := range readings {
			sum += int(r.Value)
			switch {
			case r.Value < settings.AlarmLow:
				below++
			case r.Value > settings.AlarmHigh:
				above++
			default:
				within++
			}
		}

		avg := bloodsugar.Value((sum + len(readings)/2) / len(readings))
		fmt.Fprintln(a.Out, a.localizer.Sprintf("Average: %s", a.glucose.FormatOrPlaceholder(avg, a.unit, a.mode())))

		for _, row := range []struct {
			key   string
			count int
		}{
			{"Below range: %s", below},
			{"In range: %s", within},
			{"Above range: %s", above},
		} {
			fmt.Fprintln(a.Out, a.localizer.Sprintf(row.key, a.share(row.count, len(readings))))
		}
	}

	size, err := store.Size(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out, a.localizer.Sprintf("Database size: %s", a.numbers.FileSize(size)))

	last, err := store.LastSyncRun(ctx)
	switch {
	case storage.IsNotFound(err):
		fmt.Fprintln(a.Out, a.localizer.Sprintf("Never synced"))
	case err != nil:
		return err
	default:
		fmt.Fprintln(a.Out, a.localizer.Sprintf("Last sync: %s", humanize.RelTime(last.StartedAt, now, "ago", "from now")))
	}

	return nil
}

func (a *App) share(count, total int) string {
	s, err := a.Percent(count, total)
	if err != nil {
		return bloodsugar.Placeholder
	}
	return s
}
