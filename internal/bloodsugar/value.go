// Package bloodsugar holds the canonical glucose reading and everything
// derived from it: unit conversion, range and threshold classification, and
// the display string shown to users.
package bloodsugar

import (
	"strings"

	"github.com/jwulff/glucose-go/internal/fault"
)

// Value is a glucose reading in mg/dL, the canonical unit.
type Value int

// MaxValue is the largest physiologically plausible reading.
const MaxValue Value = 1000

// MgdLPerMmolL is the molar conversion factor between the two units.
const MgdLPerMmolL = 18.0182

// Validate fails when v lies outside [0, MaxValue].
func (v Value) Validate() error {
	if v < 0 || v > MaxValue {
		return fault.InvalidArgument("bloodsugar.Value", "glucose %d outside [0, %d]", int(v), int(MaxValue))
	}
	return nil
}

// In returns v expressed in unit, unrounded.
func (v Value) In(unit Unit) float64 {
	if unit == MmolL {
		return ToMmolL(v)
	}
	return float64(v)
}

// ToMmolL converts a canonical value to mmol/L at full precision. Rounding
// is left to the formatter.
func ToMmolL(v Value) float64 {
	return float64(v) / MgdLPerMmolL
}

// FromMmolL converts mmol/L back to mg/dL at full precision.
func FromMmolL(mmol float64) float64 {
	return mmol * MgdLPerMmolL
}

// Unit is a glucose display unit.
type Unit int

const (
	MgdL Unit = iota
	MmolL
)

// String returns the unit label, which doubles as its localization key.
func (u Unit) String() string {
	if u == MmolL {
		return "mmol/L"
	}
	return "mg/dL"
}

// ParseUnit accepts "mg/dL", "mgdl", "mmol/L" or "mmol" in any case.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mg/dl", "mgdl":
		return MgdL, nil
	case "mmol/l", "mmoll", "mmol":
		return MmolL, nil
	default:
		return MgdL, fault.InvalidArgument("bloodsugar.ParseUnit", "unknown glucose unit %q", s)
	}
}
