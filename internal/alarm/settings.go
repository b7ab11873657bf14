package alarm

import (
	"github.com/jwulff/glucose-go/internal/bloodsugar"
	"github.com/jwulff/glucose-go/internal/fault"
)

// Settings is the alarm configuration.
type Settings struct {
	LowSound        Sound            `json:"lowSound"`
	HighSound       Sound            `json:"highSound"`
	ConnectionSound Sound            `json:"connectionSound"`
	ExpiringSound   Sound            `json:"expiringSound"`
	IgnoreMute      bool             `json:"ignoreMute"`
	AlarmLow        bloodsugar.Value `json:"alarmLow"`
	AlarmHigh       bloodsugar.Value `json:"alarmHigh"`
}

// DefaultSettings returns the settings used before anything is stored.
func DefaultSettings() Settings {
	return Settings{
		LowSound:        SoundAlarm,
		HighSound:       SoundAlarm,
		ConnectionSound: SoundNegative,
		ExpiringSound:   SoundExpiring,
		AlarmLow:        bloodsugar.ThresholdLow,
		AlarmHigh:       bloodsugar.ThresholdHigh,
	}
}

// Validate checks sounds and thresholds.
func (s Settings) Validate() error {
	for _, sound := range []Sound{s.LowSound, s.HighSound, s.ConnectionSound, s.ExpiringSound} {
		if !sound.Valid() {
			return fault.InvalidArgument("alarm.Settings", "unknown sound %q", sound)
		}
	}
	return validateThresholds(s.AlarmLow, s.AlarmHigh)
}

func validateThresholds(low, high bloodsugar.Value) error {
	if err := low.Validate(); err != nil {
		return err
	}
	if err := high.Validate(); err != nil {
		return err
	}
	if low >= high {
		return fault.InvalidArgument("alarm.Settings", "low threshold %d must be below high threshold %d", int(low), int(high))
	}
	return nil
}

// Action is a change request applied to Settings.
type Action interface {
	Name() string
	apply(Settings) (Settings, error)
}

// SetLowSound selects the low glucose alarm sound.
type SetLowSound struct{ Sound Sound }

// SetHighSound selects the high glucose alarm sound.
type SetHighSound struct{ Sound Sound }

// SetConnectionSound selects the connection-lost alarm sound.
type SetConnectionSound struct{ Sound Sound }

// SetExpiringSound selects the sensor wearing-time alarm sound.
type SetExpiringSound struct{ Sound Sound }

// SetIgnoreMute toggles whether alarms sound while the device is muted.
type SetIgnoreMute struct{ Enabled bool }

// SetThresholds changes the low and high alarm thresholds.
type SetThresholds struct {
	Low  bloodsugar.Value
	High bloodsugar.Value
}

// Replace swaps in settings loaded from elsewhere, e.g. written by another process.
type Replace struct{ Settings Settings }

// Reset restores the given defaults. A Store clears the persisted settings
// instead of saving them.
type Reset struct{ Defaults Settings }

func (SetLowSound) Name() string        { return "setLowGlucoseAlarmSound" }
func (SetHighSound) Name() string       { return "setHighGlucoseAlarmSound" }
func (SetConnectionSound) Name() string { return "setConnectionAlarmSound" }
func (SetExpiringSound) Name() string   { return "setExpiringAlarmSound" }
func (SetIgnoreMute) Name() string      { return "setIgnoreMute" }
func (SetThresholds) Name() string      { return "setAlarmThresholds" }
func (Replace) Name() string            { return "replaceAlarmSettings" }
func (Reset) Name() string              { return "resetAlarmSettings" }

func (a SetLowSound) apply(s Settings) (Settings, error) {
	if err := checkSound(a.Sound); err != nil {
		return s, err
	}
	s.LowSound = a.Sound
	return s, nil
}

func (a SetHighSound) apply(s Settings) (Settings, error) {
	if err := checkSound(a.Sound); err != nil {
		return s, err
	}
	s.HighSound = a.Sound
	return s, nil
}

func (a SetConnectionSound) apply(s Settings) (Settings, error) {
	if err := checkSound(a.Sound); err != nil {
		return s, err
	}
	s.ConnectionSound = a.Sound
	return s, nil
}

func (a SetExpiringSound) apply(s Settings) (Settings, error) {
	if err := checkSound(a.Sound); err != nil {
		return s, err
	}
	s.ExpiringSound = a.Sound
	return s, nil
}

func (a SetIgnoreMute) apply(s Settings) (Settings, error) {
	s.IgnoreMute = a.Enabled
	return s, nil
}

func (a SetThresholds) apply(s Settings) (Settings, error) {
	if err := validateThresholds(a.Low, a.High); err != nil {
		return s, err
	}
	s.AlarmLow = a.Low
	s.AlarmHigh = a.High
	return s, nil
}

func (a Replace) apply(s Settings) (Settings, error) {
	if err := a.Settings.Validate(); err != nil {
		return s, err
	}
	return a.Settings, nil
}

func (a Reset) apply(s Settings) (Settings, error) {
	if err := a.Defaults.Validate(); err != nil {
		return s, err
	}
	return a.Defaults, nil
}

func checkSound(sound Sound) error {
	if !sound.Valid() {
		return fault.InvalidArgument("alarm.Action", "unknown sound %q", sound)
	}
	return nil
}

// Reduce applies action to state. On error state is returned unchanged.
func Reduce(state Settings, action Action) (Settings, error) {
	if action == nil {
		return state, fault.InvalidArgument("alarm.Reduce", "nil action")
	}
	return action.apply(state)
}

// chosenSound returns the sound an action selects, if any.
func chosenSound(action Action) (Sound, bool) {
	switch a := action.(type) {
	case SetLowSound:
		return a.Sound, true
	case SetHighSound:
		return a.Sound, true
	case SetConnectionSound:
		return a.Sound, true
	case SetExpiringSound:
		return a.Sound, true
	default:
		return "", false
	}
}
