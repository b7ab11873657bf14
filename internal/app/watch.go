package app

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jwulff/glucose-go/internal/alarm"
	"github.com/jwulff/glucose-go/internal/bloodsugar"
	"github.com/jwulff/glucose-go/internal/storage"
)

// Watch polls the reading source every watch.interval, stores what it
// fetches and prints the newest reading with any alarm it raises.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	source, err := a.newSource()
	if err != nil {
		return err
	}
	store, closeStore, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	alarms, err := a.newAlarmStore(ctx, store, nil)
	if err != nil {
		return err
	}
	defer alarms.Close()
	events, err := alarms.Subscribe(ctx)
	if err != nil {
		return err
	}

	a.Logger.Info().Dur("interval", a.Config.Watch.Interval).Msg("starting watch")

	ticker := time.NewTicker(a.Config.Watch.Interval)
	defer ticker.Stop()

	for polls := 1; ; polls++ {
		if err := a.poll(ctx, store, source, alarms, events); err != nil {
			if ctx.Err() != nil {
				break
			}
			a.Logger.Error().Err(err).Msg("poll failed")
		}
		if opts.Iterations > 0 && polls >= opts.Iterations {
			break
		}

		select {
		case <-ctx.Done():
			a.Logger.Info().Msg("watch stopped")
			return nil
		case <-ticker.C:
		}
	}

	a.Logger.Info().Msg("watch stopped")
	return nil
}

// poll syncs once and reports the newest reading. A failed fetch still
// reports, so a lost connection surfaces as a connection alarm. Settings
// changed by another process since the last poll are announced first.
func (a *App) poll(ctx context.Context, store storage.Store, source ReadingSource, alarms *alarm.Store, events <-chan alarm.Event) error {
	_, syncErr := a.syncInto(ctx, store, source)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	latest, err := store.LatestReadings(ctx, 2)
	if err != nil {
		return err
	}
	settings, err := alarms.Reload(ctx)
	if err != nil {
		return err
	}
	a.announceSettingsChanges(events)

	now := a.now()
	var newest *bloodsugar.Reading
	if len(latest) > 0 {
		newest = &latest[0]
	}

	var line strings.Builder
	fmt.Fprintf(&line, "[%s] ", now.In(time.Local).Format("15:04:05"))
	if newest == nil {
		line.WriteString(bloodsugar.Placeholder)
	} else {
		line.WriteString(a.glucose.FormatOrPlaceholder(newest.Value, a.unit, a.mode()))
		line.WriteString(" " + bloodsugar.MapTrendArrow(newest.Trend))
		if len(latest) > 1 {
			if d, err := a.glucose.FormatDelta(bloodsugar.Delta(latest), a.unit); err == nil {
				line.WriteString(" " + d)
			}
		}
	}
	fmt.Fprintln(a.Out, line.String())

	results := []alarm.Result{alarm.EvaluateConnection(newest, now, settings)}
	if newest != nil && !newest.IsStale(now) {
		results = append(results, alarm.Evaluate(newest.Value, settings))
	}
	for _, res := range results {
		if !res.Triggered() {
			continue
		}
		a.Logger.Warn().Str("alarm", string(res.Kind)).Str("sound", string(res.Sound)).Msg("alarm triggered")
		fmt.Fprintf(a.Out, "  %s: %s\n", a.alarmLabel(res.Kind), a.localizer.Sprintf(res.Sound.LocalizationKey()))
	}

	return syncErr
}

func (a *App) announceSettingsChanges(events <-chan alarm.Event) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			a.Logger.Info().Str("action", ev.Action.Name()).Msg("alarm settings changed")
			fmt.Fprintln(a.Out, a.localizer.Sprintf("Alarm settings changed"))
		default:
			return
		}
	}
}

func (a *App) alarmLabel(kind alarm.Kind) string {
	switch kind {
	case alarm.KindLow:
		return a.localizer.Sprintf("Low glucose alarm")
	case alarm.KindHigh:
		return a.localizer.Sprintf("High glucose alarm")
	case alarm.KindConnection:
		return a.localizer.Sprintf("Connection alarm")
	default:
		return string(kind)
	}
}
