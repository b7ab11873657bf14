package bloodsugar

import (
	"fmt"
	"strconv"

	"github.com/jwulff/glucose-go/internal/i18n"
	"github.com/jwulff/glucose-go/internal/numfmt"
)

// Placeholder is shown in place of a value that cannot be formatted.
const Placeholder = "—"

// Mode controls how a glucose value is rendered.
type Mode struct {
	WithUnit bool // append the localized unit label
	Precise  bool // allow a second fraction digit for mmol/L
}

// Formatter renders glucose values for display. It is immutable and safe
// for concurrent use.
type Formatter struct {
	numbers *numfmt.Formatter
	loc     i18n.Localizer
}

// NewFormatter builds a Formatter. A nil localizer renders unit labels untranslated.
func NewFormatter(numbers *numfmt.Formatter, loc i18n.Localizer) *Formatter {
	if numbers == nil {
		numbers = numfmt.New(numfmt.DefaultSymbols)
	}
	return &Formatter{numbers: numbers, loc: loc}
}

// Format renders v in unit. mg/dL values are shown as plain integers; mmol/L
// values are converted and rounded to one digit, or up to two when precise.
func (f *Formatter) Format(v Value, unit Unit, mode Mode) (string, error) {
	if err := v.Validate(); err != nil {
		return "", err
	}

	var glucose string
	if unit == MmolL {
		rule := numfmt.MmolL
		if mode.Precise {
			rule = numfmt.PreciseMmolL
		}
		s, err := f.numbers.Decimal(ToMmolL(v), rule)
		if err != nil {
			return "", err
		}
		glucose = s
	} else {
		glucose = strconv.Itoa(int(v))
	}

	if mode.WithUnit {
		return glucose + " " + f.UnitLabel(unit), nil
	}
	return glucose, nil
}

// FormatOrPlaceholder is Format with errors replaced by Placeholder.
func (f *Formatter) FormatOrPlaceholder(v Value, unit Unit, mode Mode) string {
	s, err := f.Format(v, unit, mode)
	if err != nil {
		return Placeholder
	}
	return s
}

// FormatDelta renders a change between readings with an explicit sign.
func (f *Formatter) FormatDelta(delta int, unit Unit) (string, error) {
	if unit == MmolL {
		return f.numbers.Decimal(float64(delta)/MgdLPerMmolL, numfmt.MinuteChange)
	}
	return fmt.Sprintf("%+d", delta), nil
}

// UnitLabel returns the localized label of unit.
func (f *Formatter) UnitLabel(unit Unit) string {
	if f.loc == nil {
		return unit.String()
	}
	return f.loc.Sprintf(unit.String())
}
