package app

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/goodsign/monday"

	"github.com/jwulff/glucose-go/internal/bloodsugar"
	"github.com/jwulff/glucose-go/internal/elapsed"
)

// Show prints the most recent stored readings, newest first.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	if opts.Limit <= 0 {
		return fmt.Errorf("limit must be greater than zero")
	}

	store, closeStore, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	// One extra reading gives the oldest row its delta.
	readings, err := store.LatestReadings(ctx, opts.Limit+1)
	if err != nil {
		return err
	}
	if len(readings) == 0 {
		fmt.Fprintln(a.Out, a.localizer.Sprintf("No readings stored"))
		return nil
	}
	settings, err := a.alarmSettings(ctx, store)
	if err != nil {
		return err
	}

	now := a.now()
	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time\tValue\tDelta\tTrend\tRange\tNear\tAge")

	for i, r := range readings {
		if i == opts.Limit {
			break
		}
		delta := ""
		if i+1 < len(readings) {
			d, err := a.glucose.FormatDelta(bloodsugar.Delta(readings[i:]), a.unit)
			if err != nil {
				d = bloodsugar.Placeholder
			}
			delta = d
		}
		near := ""
		if bloodsugar.IsNear(int(r.Value), int(settings.AlarmLow), int(settings.AlarmHigh)) {
			near = "*"
		}
		age := bloodsugar.Placeholder
		if c, err := elapsed.FromDuration(max(now.Sub(r.Timestamp), 0)); err == nil {
			age = c.Localize(a.localizer)
		}

		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			monday.Format(r.Timestamp.In(time.Local), "Mon 02 Jan 15:04", a.dates),
			a.glucose.FormatOrPlaceholder(r.Value, a.unit, a.mode()),
			delta,
			bloodsugar.MapTrendArrow(r.Trend),
			r.RangeStatus(),
			near,
			age,
		)
	}

	return writer.Flush()
}
