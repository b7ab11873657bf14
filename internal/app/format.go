package app

import (
	"math"

	"github.com/jwulff/glucose-go/internal/bloodsugar"
	"github.com/jwulff/glucose-go/internal/elapsed"
	"github.com/jwulff/glucose-go/internal/numfmt"
)

// Format renders a glucose value given in mg/dL.
func (a *App) Format(opts FormatOptions) (string, error) {
	unit := a.unit
	if opts.Unit != "" {
		parsed, err := bloodsugar.ParseUnit(opts.Unit)
		if err != nil {
			return "", err
		}
		unit = parsed
	}
	mode := bloodsugar.Mode{
		WithUnit: opts.WithUnit,
		Precise:  opts.Precise || a.Config.Display.Precise,
	}
	return a.glucose.Format(bloodsugar.Value(opts.Value), unit, mode)
}

// Convert renders a value given in one unit in the other unit, with its label.
func (a *App) Convert(opts ConvertOptions) (string, error) {
	from, err := bloodsugar.ParseUnit(opts.From)
	if err != nil {
		return "", err
	}

	if from == bloodsugar.MgdL {
		return a.glucose.Format(bloodsugar.Value(math.Round(opts.Value)), bloodsugar.MmolL, a.mode())
	}

	mgdl := bloodsugar.FromMmolL(opts.Value)
	if err := bloodsugar.Value(math.Round(mgdl)).Validate(); err != nil {
		return "", err
	}
	rule := numfmt.MgdL
	if a.Config.Display.Precise {
		rule = numfmt.PreciseMgdL
	}
	s, err := a.numbers.Decimal(mgdl, rule)
	if err != nil {
		return "", err
	}
	return s + " " + a.glucose.UnitLabel(bloodsugar.MgdL), nil
}

// Elapsed renders a number of minutes as days, hours and minutes.
func (a *App) Elapsed(minutes int) (string, error) {
	return elapsed.Format(a.localizer, minutes)
}

// Near reports whether value lies within one unit of lower or upper.
func (a *App) Near(value, lower, upper int) bool {
	return bloodsugar.IsNear(value, lower, upper)
}

// FileSize renders a byte count with a binary unit label.
func (a *App) FileSize(n uint64) string {
	return a.numbers.FileSize(n)
}

// Percent renders value as a share of of.
func (a *App) Percent(value, of int) (string, error) {
	pct, err := numfmt.ToPercent(value, of)
	if err != nil {
		return "", err
	}
	return a.numbers.Percent(pct)
}
