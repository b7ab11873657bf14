// Package alarm owns the alarm settings and decides which alarm a reading
// raises. Sound playback happens elsewhere.
package alarm

import (
	"strings"

	"github.com/jwulff/glucose-go/internal/fault"
)

// Sound names a notification sound.
type Sound string

const (
	SoundNone      Sound = "none"
	SoundAlarm     Sound = "alarm"
	SoundExpiring  Sound = "expiring"
	SoundNegative  Sound = "negative"
	SoundPositive  Sound = "positive"
	SoundVibration Sound = "vibration"
)

var allSounds = []Sound{SoundNone, SoundAlarm, SoundExpiring, SoundNegative, SoundPositive, SoundVibration}

// AllSounds lists the selectable sounds in display order.
func AllSounds() []Sound {
	out := make([]Sound, len(allSounds))
	copy(out, allSounds)
	return out
}

// Valid reports whether s is a known sound.
func (s Sound) Valid() bool {
	for _, known := range allSounds {
		if s == known {
			return true
		}
	}
	return false
}

// LocalizationKey is the catalog key of the sound's display name.
func (s Sound) LocalizationKey() string {
	return "Sound " + string(s)
}

// ParseSound parses a sound name, ignoring case.
func ParseSound(name string) (Sound, error) {
	s := Sound(strings.ToLower(strings.TrimSpace(name)))
	if !s.Valid() {
		return "", fault.InvalidArgument("alarm.ParseSound", "unknown sound %q", name)
	}
	return s, nil
}
