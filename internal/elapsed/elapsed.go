// Package elapsed splits elapsed minutes into days, hours and minutes.
package elapsed

import (
	"time"

	"github.com/jwulff/glucose-go/internal/fault"
	"github.com/jwulff/glucose-go/internal/i18n"
)

const (
	minutesPerHour = 60
	hoursPerDay    = 24
	minutesPerDay  = minutesPerHour * hoursPerDay
)

// FormatKey is the localization key for a decomposed duration.
const FormatKey = "%[1]dd %[2]dh %[3]dmin"

// Components is a decomposed duration. Hours lie in [0, 24) and Minutes in [0, 60).
type Components struct {
	Days    int
	Hours   int
	Minutes int
}

// Total recomposes the components into minutes.
func (c Components) Total() int {
	return c.Days*minutesPerDay + c.Hours*minutesPerHour + c.Minutes
}

// Decompose splits minutes into days, hours and minutes.
func Decompose(minutes int) (Components, error) {
	if minutes < 0 {
		return Components{}, fault.InvalidArgument("elapsed.Decompose", "minutes must not be negative, got %d", minutes)
	}
	return Components{
		Days:    minutes / minutesPerDay,
		Hours:   (minutes / minutesPerHour) % hoursPerDay,
		Minutes: minutes % minutesPerHour,
	}, nil
}

// FromDuration decomposes d truncated to whole minutes.
func FromDuration(d time.Duration) (Components, error) {
	if d < 0 {
		return Components{}, fault.InvalidArgument("elapsed.FromDuration", "duration must not be negative, got %s", d)
	}
	return Decompose(int(d / time.Minute))
}

// Localize renders c as "Xd Yh Zmin" in the localizer's language.
func (c Components) Localize(loc i18n.Localizer) string {
	return loc.Sprintf(FormatKey, c.Days, c.Hours, c.Minutes)
}

// Format decomposes minutes and localizes the result.
func Format(loc i18n.Localizer, minutes int) (string, error) {
	c, err := Decompose(minutes)
	if err != nil {
		return "", err
	}
	return c.Localize(loc), nil
}
