package bloodsugar

import (
	"testing"
	"time"
)

func TestClassifyRange(t *testing.T) {
	tests := []struct {
		mgdl     int
		expected RangeStatus
	}{
		{40, RangeUrgentLow},
		{54, RangeUrgentLow},
		{55, RangeLow},
		{69, RangeLow},
		{70, RangeNormal},
		{100, RangeNormal},
		{180, RangeNormal},
		{181, RangeHigh},
		{250, RangeHigh},
		{251, RangeVeryHigh},
		{400, RangeVeryHigh},
	}

	for _, tt := range tests {
		result := ClassifyRange(tt.mgdl)
		if result != tt.expected {
			t.Errorf("ClassifyRange(%d) = %s, want %s", tt.mgdl, result, tt.expected)
		}
	}
}

func TestMapTrendArrow(t *testing.T) {
	tests := []struct {
		trend    string
		expected string
	}{
		{"Flat", "-"},
		{"SingleUp", "^"},
		{"SingleDown", "v"},
		{"DoubleUp", "^^"},
		{"DoubleDown", "vv"},
		{"FortyFiveUp", "/"},
		{"FortyFiveDown", "\\"},
		{"Unknown", "?"},
		{"", "?"},
	}

	for _, tt := range tests {
		result := MapTrendArrow(tt.trend)
		if result != tt.expected {
			t.Errorf("MapTrendArrow(%q) = %q, want %q", tt.trend, result, tt.expected)
		}
	}
}

func TestReadingIsStale(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		age      time.Duration
		expected bool
	}{
		{"fresh reading (1 minute ago)", time.Minute, false},
		{"fresh reading (9 minutes ago)", 9 * time.Minute, false},
		{"stale reading (10 minutes ago)", 10 * time.Minute, true},
		{"stale reading (15 minutes ago)", 15 * time.Minute, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Reading{Timestamp: now.Add(-tt.age), Value: 100}
			if result := r.IsStale(now); result != tt.expected {
				t.Errorf("IsStale() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestReadingRangeStatus(t *testing.T) {
	r := Reading{Value: 65}
	if r.RangeStatus() != RangeLow {
		t.Errorf("RangeStatus() = %s, want %s", r.RangeStatus(), RangeLow)
	}
}

func TestDelta(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		readings []Reading
		expected int
	}{
		{"no readings", nil, 0},
		{"single reading", []Reading{{Timestamp: now, Value: 120}}, 0},
		{"rising", []Reading{{Timestamp: now, Value: 120}, {Timestamp: now.Add(-5 * time.Minute), Value: 112}}, 8},
		{"falling", []Reading{{Timestamp: now, Value: 98}, {Timestamp: now.Add(-5 * time.Minute), Value: 104}}, -6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Delta(tt.readings); result != tt.expected {
				t.Errorf("Delta() = %d, want %d", result, tt.expected)
			}
		})
	}
}
