package bloodsugar

import (
	"strings"
	"time"
)

// RangeStatus represents the glucose range classification.
type RangeStatus string

const (
	RangeUrgentLow RangeStatus = "urgentLow"
	RangeLow       RangeStatus = "low"
	RangeNormal    RangeStatus = "normal"
	RangeHigh      RangeStatus = "high"
	RangeVeryHigh  RangeStatus = "veryHigh"
)

// Glucose thresholds in mg/dL.
const (
	ThresholdUrgentLow = 55
	ThresholdLow       = 70
	ThresholdHigh      = 180
	ThresholdVeryHigh  = 250
)

// StaleThreshold is how old a reading can be before it's considered stale.
const StaleThreshold = 10 * time.Minute

// Reading is a single sensor reading. Everything shown to a user is derived
// from these fields on demand.
type Reading struct {
	Timestamp time.Time
	Value     Value
	Trend     string // Raw trend name, e.g. "Flat", "SingleUp"
}

// RangeStatus classifies the reading.
func (r Reading) RangeStatus() RangeStatus {
	return ClassifyRange(int(r.Value))
}

// IsStale reports whether the reading is older than StaleThreshold at now.
func (r Reading) IsStale(now time.Time) bool {
	return now.Sub(r.Timestamp) >= StaleThreshold
}

// TrendArrows maps trend names to arrows for text display.
var TrendArrows = map[string]string{
	"doubleup":      "^^",
	"singleup":      "^",
	"fortyfiveup":   "/",
	"flat":          "-",
	"fortyfivedown": "\\",
	"singledown":    "v",
	"doubledown":    "vv",
}

// ClassifyRange determines the range status for a glucose value.
func ClassifyRange(mgdl int) RangeStatus {
	if mgdl < ThresholdUrgentLow {
		return RangeUrgentLow
	}
	if mgdl < ThresholdLow {
		return RangeLow
	}
	if mgdl <= ThresholdHigh {
		return RangeNormal
	}
	if mgdl <= ThresholdVeryHigh {
		return RangeHigh
	}
	return RangeVeryHigh
}

// MapTrendArrow converts a trend name to a display arrow.
func MapTrendArrow(trend string) string {
	if arrow, ok := TrendArrows[strings.ToLower(trend)]; ok {
		return arrow
	}
	return "?"
}

// Delta returns the change from the previous reading in mg/dL. Readings are
// ordered newest first; fewer than two readings yield zero.
func Delta(readings []Reading) int {
	if len(readings) < 2 {
		return 0
	}
	return int(readings[0].Value) - int(readings[1].Value)
}
