package alarm

import (
	"time"

	"github.com/jwulff/glucose-go/internal/bloodsugar"
)

// Kind is the alarm a reading raises.
type Kind string

const (
	KindNone       Kind = "none"
	KindLow        Kind = "low"
	KindHigh       Kind = "high"
	KindConnection Kind = "connection"
)

// Result is the outcome of evaluating a reading against Settings.
type Result struct {
	Kind  Kind
	Sound Sound
	// Near is set when the value sits within one unit of either threshold.
	Near bool
}

// Triggered reports whether an alarm should sound.
func (r Result) Triggered() bool {
	return r.Kind != KindNone && r.Sound != SoundNone
}

// Evaluate classifies v against the alarm thresholds in s.
func Evaluate(v bloodsugar.Value, s Settings) Result {
	res := Result{
		Kind: KindNone,
		Near: bloodsugar.IsNear(int(v), int(s.AlarmLow), int(s.AlarmHigh)),
	}
	switch {
	case v < s.AlarmLow:
		res.Kind = KindLow
		res.Sound = s.LowSound
	case v > s.AlarmHigh:
		res.Kind = KindHigh
		res.Sound = s.HighSound
	}
	return res
}

// EvaluateConnection raises a connection alarm when the newest reading is
// stale at now, or when there is no reading at all.
func EvaluateConnection(latest *bloodsugar.Reading, now time.Time, s Settings) Result {
	if latest == nil || latest.IsStale(now) {
		return Result{Kind: KindConnection, Sound: s.ConnectionSound}
	}
	return Result{Kind: KindNone}
}
