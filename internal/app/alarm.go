package app

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/jwulff/glucose-go/internal/alarm"
	"github.com/jwulff/glucose-go/internal/bloodsugar"
)

// AlarmGet prints the current alarm settings.
func (a *App) AlarmGet(ctx context.Context) (alarm.Settings, error) {
	store, closeStore, err := a.openStore()
	if err != nil {
		return alarm.Settings{}, err
	}
	defer closeStore()

	settings, err := a.alarmSettings(ctx, store)
	if err != nil {
		return alarm.Settings{}, err
	}
	return settings, a.printAlarmSettings(settings)
}

// AlarmSet applies the requested changes one action at a time and prints
// the resulting settings. Changes applied before a failing one are kept.
func (a *App) AlarmSet(ctx context.Context, opts AlarmSetOptions) (alarm.Settings, error) {
	actions, err := alarmActions(opts)
	if err != nil {
		return alarm.Settings{}, err
	}

	store, closeStore, err := a.openStore()
	if err != nil {
		return alarm.Settings{}, err
	}
	defer closeStore()

	var tester alarm.SoundTester
	if opts.Preview {
		tester = func(sound alarm.Sound) {
			fmt.Fprintf(a.Out, "♪ %s\n", a.localizer.Sprintf(sound.LocalizationKey()))
		}
	}

	alarms, err := a.newAlarmStore(ctx, store, tester)
	if err != nil {
		return alarm.Settings{}, err
	}
	defer alarms.Close()

	settings, err := alarms.State(ctx)
	if err != nil {
		return alarm.Settings{}, err
	}
	if opts.Low != nil || opts.High != nil {
		actions = append(actions, resolveThresholds(settings, opts.Low, opts.High))
	}
	for _, action := range actions {
		next, err := alarms.Dispatch(ctx, action)
		if err != nil {
			return settings, fmt.Errorf("%s: %w", action.Name(), err)
		}
		settings = next
	}
	return settings, a.printAlarmSettings(settings)
}

// AlarmReset restores the configured default settings.
func (a *App) AlarmReset(ctx context.Context) (alarm.Settings, error) {
	store, closeStore, err := a.openStore()
	if err != nil {
		return alarm.Settings{}, err
	}
	defer closeStore()

	alarms, err := a.newAlarmStore(ctx, store, nil)
	if err != nil {
		return alarm.Settings{}, err
	}
	defer alarms.Close()

	settings, err := alarms.Reset(ctx)
	if err != nil {
		return alarm.Settings{}, err
	}
	return settings, a.printAlarmSettings(settings)
}

func alarmActions(opts AlarmSetOptions) ([]alarm.Action, error) {
	var actions []alarm.Action
	sounds := []struct {
		name *string
		action func(alarm.Sound) alarm.Action
	}{
		{opts.LowSound, func(s alarm.Sound) alarm.Action { return alarm.SetLowSound{Sound: s} }},
		{opts.HighSound, func(s alarm.Sound) alarm.Action { return alarm.SetHighSound{Sound: s} }},
		{opts.ConnectionSound, func(s alarm.Sound) alarm.Action { return alarm.SetConnectionSound{Sound: s} }},
		{opts.ExpiringSound, func(s alarm.Sound) alarm.Action { return alarm.SetExpiringSound{Sound: s} }},
	}
	for _, snd := range sounds {
		if snd.name == nil {
			continue
		}
		sound, err := alarm.ParseSound(*snd.name)
		if err != nil {
			return nil, err
		}
		actions = append(actions, snd.action(sound))
	}
	if opts.IgnoreMute != nil {
		actions = append(actions, alarm.SetIgnoreMute{Enabled: *opts.IgnoreMute})
	}
	if len(actions) == 0 && opts.Low == nil && opts.High == nil {
		return nil, fmt.Errorf("nothing to change")
	}
	return actions, nil
}

// resolveThresholds fills an unset threshold from the current settings.
func resolveThresholds(s alarm.Settings, low, high *int) alarm.SetThresholds {
	set := alarm.SetThresholds{Low: s.AlarmLow, High: s.AlarmHigh}
	if low != nil {
		set.Low = bloodsugar.Value(*low)
	}
	if high != nil {
		set.High = bloodsugar.Value(*high)
	}
	return set
}

// AlarmSounds lists every sound with its localized name.
func (a *App) AlarmSounds() error {
	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	for _, sound := range alarm.AllSounds() {
		fmt.Fprintf(writer, "%s\t%s\n", sound, a.localizer.Sprintf(sound.LocalizationKey()))
	}
	return writer.Flush()
}

// AlarmCheck evaluates a value against the current settings and prints the
// alarm it would raise.
func (a *App) AlarmCheck(ctx context.Context, value int) (alarm.Result, error) {
	v := bloodsugar.Value(value)
	if err := v.Validate(); err != nil {
		return alarm.Result{}, err
	}

	store, closeStore, err := a.openStore()
	if err != nil {
		return alarm.Result{}, err
	}
	defer closeStore()

	settings, err := a.alarmSettings(ctx, store)
	if err != nil {
		return alarm.Result{}, err
	}

	res := alarm.Evaluate(v, settings)
	glucose := a.glucose.FormatOrPlaceholder(v, a.unit, a.mode())
	switch {
	case res.Triggered():
		fmt.Fprintf(a.Out, "%s: %s (%s)\n", glucose, a.alarmLabel(res.Kind), a.localizer.Sprintf(res.Sound.LocalizationKey()))
	case res.Kind != alarm.KindNone:
		fmt.Fprintf(a.Out, "%s: %s (%s)\n", glucose, a.alarmLabel(res.Kind), a.localizer.Sprintf(alarm.SoundNone.LocalizationKey()))
	default:
		fmt.Fprintf(a.Out, "%s: %s\n", glucose, a.localizer.Sprintf("No alarm"))
	}
	if res.Near {
		fmt.Fprintln(a.Out, a.localizer.Sprintf("Close to an alarm threshold"))
	}
	return res, nil
}

func (a *App) printAlarmSettings(s alarm.Settings) error {
	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, a.localizer.Sprintf("Alarm settings"))
	rows := []struct {
		label, value string
	}{
		{a.localizer.Sprintf("Low glucose alarm"), a.soundName(s.LowSound) + " < " + a.glucose.FormatOrPlaceholder(s.AlarmLow, a.unit, a.mode())},
		{a.localizer.Sprintf("High glucose alarm"), a.soundName(s.HighSound) + " > " + a.glucose.FormatOrPlaceholder(s.AlarmHigh, a.unit, a.mode())},
		{a.localizer.Sprintf("Connection alarm"), a.soundName(s.ConnectionSound)},
		{a.localizer.Sprintf("Wearing time alarm"), a.soundName(s.ExpiringSound)},
		{a.localizer.Sprintf("Ignore mute"), fmt.Sprintf("%t", s.IgnoreMute)},
	}
	for _, row := range rows {
		fmt.Fprintf(writer, "  %s\t%s\n", row.label, row.value)
	}
	return writer.Flush()
}

func (a *App) soundName(s alarm.Sound) string {
	return a.localizer.Sprintf(s.LocalizationKey())
}
