// Package numfmt renders decimal quantities, percentages and byte sizes with
// fixed fraction-digit rules and locale symbols.
//
// Rounding is half-to-even on the decimal representation of the input, so a
// value converted once and rounded to a fixed number of digits always yields
// the same string.
package numfmt

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jwulff/glucose-go/internal/fault"
)

// Rule selects how many fraction digits a value is rendered with.
type Rule struct {
	MinFractionDigits int
	MaxFractionDigits int
	// PositivePrefix is prepended to values that are zero or greater before
	// rounding, so a small fall still renders with a minus sign.
	PositivePrefix string
	Grouping       bool
}

// Glucose rules, one per unit and precision.
var (
	MgdL         = Rule{MinFractionDigits: 0, MaxFractionDigits: 0}
	PreciseMgdL  = Rule{MinFractionDigits: 0, MaxFractionDigits: 2}
	MmolL        = Rule{MinFractionDigits: 1, MaxFractionDigits: 1, Grouping: true}
	PreciseMmolL = Rule{MinFractionDigits: 1, MaxFractionDigits: 2, Grouping: true}
	MinuteChange = Rule{MinFractionDigits: 1, MaxFractionDigits: 1, PositivePrefix: "+", Grouping: true}
)

var (
	percentRule  = Rule{MinFractionDigits: 0, MaxFractionDigits: 1, Grouping: true}
	fileSizeRule = Rule{MinFractionDigits: 2, MaxFractionDigits: 2}
)

func (r Rule) validate() error {
	if r.MinFractionDigits < 0 || r.MaxFractionDigits < 0 {
		return fault.InvalidArgument("numfmt.Rule", "fraction digits must not be negative (min %d, max %d)", r.MinFractionDigits, r.MaxFractionDigits)
	}
	if r.MinFractionDigits > r.MaxFractionDigits {
		return fault.InvalidArgument("numfmt.Rule", "min fraction digits %d exceed max %d", r.MinFractionDigits, r.MaxFractionDigits)
	}
	return nil
}

// Symbols are the locale-specific characters used when rendering numbers.
type Symbols struct {
	Decimal       string
	Group         string
	PercentSuffix string
}

// DefaultSymbols are the English symbols.
var DefaultSymbols = Symbols{Decimal: ".", Group: ",", PercentSuffix: "%"}

// Formatter renders numbers with a fixed set of symbols. It holds no mutable
// state and may be shared between goroutines.
type Formatter struct {
	symbols Symbols
}

// New creates a Formatter. Empty fields fall back to DefaultSymbols.
func New(symbols Symbols) *Formatter {
	if symbols.Decimal == "" {
		symbols.Decimal = DefaultSymbols.Decimal
	}
	if symbols.Group == "" {
		symbols.Group = DefaultSymbols.Group
	}
	if symbols.PercentSuffix == "" {
		symbols.PercentSuffix = DefaultSymbols.PercentSuffix
	}
	return &Formatter{symbols: symbols}
}

// Symbols returns the symbols the formatter renders with.
func (f *Formatter) Symbols() Symbols {
	return f.symbols
}

// Decimal renders v rounded to r.MaxFractionDigits, keeping at least
// r.MinFractionDigits.
func (f *Formatter) Decimal(v float64, r Rule) (string, error) {
	if err := r.validate(); err != nil {
		return "", err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fault.Formatting("numfmt.Decimal", fmt.Errorf("cannot render %v", v))
	}

	d := decimal.NewFromFloat(v).RoundBank(int32(r.MaxFractionDigits))
	return f.render(d, r, v < 0), nil
}

// Percent renders v, which is already expressed in percent, with at most one
// fraction digit and the locale percent suffix: 50 renders as "50%".
func (f *Formatter) Percent(v float64) (string, error) {
	s, err := f.Decimal(v, percentRule)
	if err != nil {
		return "", err
	}
	return s + f.symbols.PercentSuffix, nil
}

// ToPercent returns value as a percentage of of.
func ToPercent(value, of int) (float64, error) {
	if of == 0 {
		return 0, fault.DivisionByZero("numfmt.ToPercent")
	}
	return 100.0 * float64(value) / float64(of), nil
}

func (f *Formatter) render(d decimal.Decimal, r Rule, negative bool) string {
	fixed := d.Abs().StringFixed(int32(r.MaxFractionDigits))

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	for len(fracPart) > r.MinFractionDigits && strings.HasSuffix(fracPart, "0") {
		fracPart = fracPart[:len(fracPart)-1]
	}
	if r.Grouping {
		intPart = group(intPart, f.symbols.Group)
	}

	var b strings.Builder
	if negative {
		b.WriteString("-")
	} else {
		b.WriteString(r.PositivePrefix)
	}
	b.WriteString(intPart)
	if fracPart != "" {
		b.WriteString(f.symbols.Decimal)
		b.WriteString(fracPart)
	}
	return b.String()
}

// group inserts sep between every three digits of an unsigned integer string.
func group(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
