package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwulff/glucose-go/internal/alarm"
	"github.com/jwulff/glucose-go/internal/bloodsugar"
	"github.com/jwulff/glucose-go/internal/config"
	"github.com/jwulff/glucose-go/internal/fault"
	"github.com/jwulff/glucose-go/internal/logging"
	"github.com/jwulff/glucose-go/internal/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		App:     config.AppConfig{Name: "glucose", Environment: "test"},
		Logging: logging.Config{Level: "disabled"},
		Display: config.DisplayConfig{Unit: "mg/dL", Locale: "en"},
		Alarm: config.AlarmConfig{
			Low:             70,
			High:            180,
			LowSound:        "alarm",
			HighSound:       "alarm",
			ConnectionSound: "negative",
			ExpiringSound:   "expiring",
		},
		Dexcom:  config.DexcomConfig{Timeout: time.Second},
		Storage: config.StorageConfig{Path: filepath.Join(t.TempDir(), "glucose.db")},
		Watch:   config.WatchConfig{Interval: 10 * time.Millisecond, HistoryMinutes: 1440, MaxCount: 288},
	}
}

func newTestApp(t *testing.T, mutate func(*config.Config)) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := testConfig(t)
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())

	a, err := NewApp(cfg, zerolog.Nop())
	require.NoError(t, err)

	var out bytes.Buffer
	a.Out = &out
	return a, &out
}

type shareReading struct {
	offset time.Duration
	value  int
	trend  string
}

// shareServer imitates the Share endpoints the client calls.
type shareServer struct {
	mu       sync.Mutex
	now      time.Time
	readings []shareReading
	fail     bool
}

func (s *shareServer) set(readings ...shareReading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = readings
}

func (s *shareServer) setFail(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fail
}

func (s *shareServer) start(t *testing.T) string {
	mux := http.NewServeMux()
	mux.HandleFunc("/General/AuthenticatePublisherAccount", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode("account")
	})
	mux.HandleFunc("/General/LoginPublisherAccountById", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode("session")
	})
	mux.HandleFunc("/Publisher/ReadPublisherLatestGlucoseValues", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.fail {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		body := make([]map[string]any, 0, len(s.readings))
		for _, r := range s.readings {
			body = append(body, map[string]any{
				"WT":    fmt.Sprintf("Date(%d)", s.now.Add(-r.offset).UnixMilli()),
				"Value": r.value,
				"Trend": r.trend,
			})
		}
		_ = json.NewEncoder(w).Encode(body)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

// newSyncingApp returns an app wired to a fake Share server whose
// readings are relative to the app clock.
func newSyncingApp(t *testing.T, mutate func(*config.Config)) (*App, *bytes.Buffer, *shareServer) {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	share := &shareServer{now: now}
	url := share.start(t)

	a, out := newTestApp(t, func(cfg *config.Config) {
		cfg.Dexcom.BaseURL = url
		cfg.Dexcom.Username = "someone"
		cfg.Dexcom.Password = "secret"
		if mutate != nil {
			mutate(cfg)
		}
	})
	a.now = func() time.Time { return now }
	return a, out, share
}

func TestNewAppMatchesLocale(t *testing.T) {
	a, _ := newTestApp(t, func(cfg *config.Config) { cfg.Display.Locale = "de-AT" })
	assert.Equal(t, "de", a.locale.String())

	fallback, _ := newTestApp(t, func(cfg *config.Config) { cfg.Display.Locale = "ja" })
	assert.Equal(t, "en", fallback.locale.String())
	assert.Equal(t, "ja", fallback.requested.String())
}

func TestShowAgeTruncatesAndClamps(t *testing.T) {
	a, out, share := newSyncingApp(t, nil)
	share.set(
		shareReading{-2 * time.Minute, 110, "Flat"},
		shareReading{90 * time.Second, 100, "Flat"},
	)
	ctx := context.Background()
	_, err := a.Sync(ctx)
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, a.Show(ctx, ShowOptions{Limit: 2}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "110 mg/dL")
	assert.Contains(t, lines[1], "0d 0h 0min")
	assert.Contains(t, lines[2], "100 mg/dL")
	assert.Contains(t, lines[2], "0d 0h 1min")
}

func TestFormat(t *testing.T) {
	a, _ := newTestApp(t, nil)

	tests := []struct {
		name     string
		opts     FormatOptions
		expected string
	}{
		{"mg/dL default unit", FormatOptions{Value: 100}, "100"},
		{"mg/dL with unit", FormatOptions{Value: 100, WithUnit: true}, "100 mg/dL"},
		{"mmol/L", FormatOptions{Value: 100, Unit: "mmol"}, "5.5"},
		{"mmol/L precise", FormatOptions{Value: 100, Unit: "mmol/L", Precise: true}, "5.55"},
		{"mmol/L with unit", FormatOptions{Value: 180, Unit: "mmol/L", WithUnit: true}, "10.0 mmol/L"},
		{"zero", FormatOptions{Value: 0, Unit: "mmol/L"}, "0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Format(tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFormatErrors(t *testing.T) {
	a, _ := newTestApp(t, nil)

	_, err := a.Format(FormatOptions{Value: -1})
	assert.ErrorIs(t, err, fault.ErrInvalidArgument)

	_, err = a.Format(FormatOptions{Value: 100, Unit: "grains"})
	assert.ErrorIs(t, err, fault.ErrInvalidArgument)
}

func TestFormatLocalized(t *testing.T) {
	a, _ := newTestApp(t, func(cfg *config.Config) {
		cfg.Display.Locale = "de"
		cfg.Display.Unit = "mmol/L"
	})

	got, err := a.Format(FormatOptions{Value: 100, WithUnit: true})
	require.NoError(t, err)
	assert.Equal(t, "5,5 mmol/L", got)
}

func TestConvert(t *testing.T) {
	a, _ := newTestApp(t, nil)

	got, err := a.Convert(ConvertOptions{Value: 100, From: "mg/dL"})
	require.NoError(t, err)
	assert.Equal(t, "5.5 mmol/L", got)

	got, err = a.Convert(ConvertOptions{Value: 5.5, From: "mmol/L"})
	require.NoError(t, err)
	assert.Equal(t, "99 mg/dL", got)

	got, err = a.Convert(ConvertOptions{Value: 55.5, From: "mmol/L"})
	require.NoError(t, err)
	assert.Equal(t, "1000 mg/dL", got)

	_, err = a.Convert(ConvertOptions{Value: -2, From: "mmol/L"})
	assert.ErrorIs(t, err, fault.ErrInvalidArgument)

	_, err = a.Convert(ConvertOptions{Value: 1, From: "stone"})
	assert.Error(t, err)
}

func TestElapsed(t *testing.T) {
	a, _ := newTestApp(t, nil)

	got, err := a.Elapsed(1501)
	require.NoError(t, err)
	assert.Equal(t, "1d 1h 1min", got)

	_, err = a.Elapsed(-1)
	assert.ErrorIs(t, err, fault.ErrInvalidArgument)
}

func TestNearFileSizePercent(t *testing.T) {
	a, _ := newTestApp(t, nil)

	assert.True(t, a.Near(71, 70, 180))
	assert.False(t, a.Near(100, 70, 180))

	assert.Equal(t, "1.50 KB", a.FileSize(1536))
	assert.Equal(t, "0.00 bytes", a.FileSize(0))

	pct, err := a.Percent(1, 3)
	require.NoError(t, err)
	assert.Equal(t, "33.3%", pct)

	_, err = a.Percent(50, 0)
	assert.ErrorIs(t, err, fault.ErrDivisionByZero)
}

func TestSyncRequiresCredentials(t *testing.T) {
	a, _ := newTestApp(t, nil)

	_, err := a.Sync(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dexcom.username")
}

func TestSyncShowAndStats(t *testing.T) {
	a, out, share := newSyncingApp(t, nil)
	share.set(
		shareReading{0, 200, "SingleUp"},
		shareReading{5 * time.Minute, 100, "Flat"},
		shareReading{10 * time.Minute, 60, "DoubleDown"},
	)
	ctx := context.Background()

	run, err := a.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, run.Fetched)
	assert.Equal(t, 3, run.Stored)
	assert.Contains(t, out.String(), "Stored 3 of 3 readings")

	out.Reset()
	require.NoError(t, a.Show(ctx, ShowOptions{Limit: 2}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Value")
	assert.Contains(t, lines[1], "200 mg/dL")
	assert.Contains(t, lines[1], "+100")
	assert.Contains(t, lines[1], " ^ ")
	assert.Contains(t, lines[1], "0d 0h 0min")
	assert.Contains(t, lines[2], "100 mg/dL")
	assert.Contains(t, lines[2], "+40")
	assert.Contains(t, lines[2], "0d 0h 5min")

	out.Reset()
	require.NoError(t, a.Stats(ctx, StatsOptions{Window: time.Hour}))
	stats := out.String()
	assert.Contains(t, stats, "3 readings")
	assert.Contains(t, stats, "Average: 120 mg/dL")
	assert.Contains(t, stats, "Below range: 33.3%")
	assert.Contains(t, stats, "In range: 33.3%")
	assert.Contains(t, stats, "Above range: 33.3%")
	assert.Contains(t, stats, "Database size: ")
	assert.Contains(t, stats, "Last sync: ")
}

func TestStatsSince(t *testing.T) {
	a, out, share := newSyncingApp(t, nil)
	share.set(
		shareReading{0, 120, "Flat"},
		shareReading{3 * time.Hour, 250, "Flat"},
	)
	ctx := context.Background()
	_, err := a.Sync(ctx)
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, a.Stats(ctx, StatsOptions{Since: a.now().Add(-time.Hour)}))
	assert.Contains(t, out.String(), "1 reading\n")
	assert.Contains(t, out.String(), "In range: 100%")

	out.Reset()
	require.NoError(t, a.Stats(ctx, StatsOptions{Window: time.Hour, Since: a.now().Add(-4 * time.Hour)}))
	assert.Contains(t, out.String(), "2 readings")

	assert.Error(t, a.Stats(ctx, StatsOptions{Since: a.now().Add(time.Hour)}))
}

func TestParseSince(t *testing.T) {
	tests := []struct {
		name     string
		locale   string
		input    string
		expected time.Time
	}{
		{"iso", "en", "2026-01-20", time.Date(2026, 1, 20, 0, 0, 0, 0, time.Local)},
		{"iso with time", "de", "2026-01-20 08:30", time.Date(2026, 1, 20, 8, 30, 0, 0, time.Local)},
		{"month first", "en", "02/03/2026", time.Date(2026, 2, 3, 0, 0, 0, 0, time.Local)},
		{"day first", "de", "02/03/2026", time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)},
		{"british english", "en-GB", "02/03/2026", time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)},
		{"written month", "fr", "March 2, 2026", time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestApp(t, func(cfg *config.Config) { cfg.Display.Locale = tt.locale })
			got, err := a.ParseSince(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "got %s", got)
		})
	}

	a, _ := newTestApp(t, nil)
	_, err := a.ParseSince("2026-13-45")
	assert.Error(t, err)
}

func TestSyncRecordsFailure(t *testing.T) {
	a, out, share := newSyncingApp(t, nil)
	share.setFail(true)
	ctx := context.Background()

	run, err := a.Sync(ctx)
	require.Error(t, err)
	require.NotNil(t, run)
	assert.NotEmpty(t, run.Error)

	out.Reset()
	require.NoError(t, a.Stats(ctx, StatsOptions{Window: time.Hour}))
	assert.Contains(t, out.String(), "0 readings")
	assert.Contains(t, out.String(), "Last sync: ")
}

func TestShowAndStatsEmpty(t *testing.T) {
	a, out := newTestApp(t, nil)
	ctx := context.Background()

	require.NoError(t, a.Show(ctx, ShowOptions{Limit: 5}))
	assert.Equal(t, "No readings stored\n", out.String())

	out.Reset()
	require.NoError(t, a.Stats(ctx, StatsOptions{Window: time.Hour}))
	assert.Contains(t, out.String(), "0 readings")
	assert.Contains(t, out.String(), "Never synced")
	assert.NotContains(t, out.String(), "Average")

	assert.Error(t, a.Show(ctx, ShowOptions{Limit: 0}))
	assert.Error(t, a.Stats(ctx, StatsOptions{}))
}

func TestShowMmolLocalized(t *testing.T) {
	a, out, share := newSyncingApp(t, func(cfg *config.Config) {
		cfg.Display.Unit = "mmol/L"
		cfg.Display.Locale = "de"
	})
	share.set(shareReading{0, 100, "Flat"}, shareReading{5 * time.Minute, 94, "Flat"})
	ctx := context.Background()

	_, err := a.Sync(ctx)
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, a.Show(ctx, ShowOptions{Limit: 1}))
	assert.Contains(t, out.String(), "5,5 mmol/L")
	assert.Contains(t, out.String(), "+0,3")
	assert.Contains(t, out.String(), "0T 0Std 0Min")
}

func ptr[T any](v T) *T { return &v }

func TestAlarmSetAndGet(t *testing.T) {
	a, out := newTestApp(t, nil)
	ctx := context.Background()

	settings, err := a.AlarmSet(ctx, AlarmSetOptions{
		LowSound:   ptr("vibration"),
		IgnoreMute: ptr(true),
		Low:        ptr(65),
		Preview:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, alarm.SoundVibration, settings.LowSound)
	assert.True(t, settings.IgnoreMute)
	assert.Equal(t, bloodsugar.Value(65), settings.AlarmLow)
	assert.Equal(t, bloodsugar.Value(180), settings.AlarmHigh)
	assert.Contains(t, out.String(), "♪ Vibration only")

	out.Reset()
	got, err := a.AlarmGet(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings, got)
	assert.Contains(t, out.String(), "Alarm settings")
	assert.Contains(t, out.String(), "Vibration only < 65 mg/dL")
	assert.Contains(t, out.String(), "Alarm > 180 mg/dL")
}

func TestAlarmGetLocalized(t *testing.T) {
	a, out := newTestApp(t, func(cfg *config.Config) { cfg.Display.Locale = "de" })

	_, err := a.AlarmGet(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Alarmeinstellungen")
	assert.Contains(t, out.String(), "Verbindungsalarm")
}

func TestAlarmSetErrors(t *testing.T) {
	a, _ := newTestApp(t, nil)
	ctx := context.Background()

	_, err := a.AlarmSet(ctx, AlarmSetOptions{})
	assert.Error(t, err)

	_, err = a.AlarmSet(ctx, AlarmSetOptions{HighSound: ptr("siren")})
	assert.ErrorIs(t, err, fault.ErrInvalidArgument)

	_, err = a.AlarmSet(ctx, AlarmSetOptions{Low: ptr(200)})
	assert.ErrorIs(t, err, fault.ErrInvalidArgument)

	settings, err := a.AlarmGet(ctx)
	require.NoError(t, err)
	assert.Equal(t, alarm.DefaultSettings(), settings)
}

func TestAlarmCommandsFallBackFromInvalidStoredSettings(t *testing.T) {
	a, out := newTestApp(t, nil)
	ctx := context.Background()

	store, closeStore, err := a.openStore()
	require.NoError(t, err)
	require.NoError(t, store.SetConfig(ctx, storage.AlarmSettingsKey,
		`{"lowSound":"bogus","highSound":"alarm","connectionSound":"negative","expiringSound":"expiring","alarmLow":300,"alarmHigh":100}`))
	closeStore()

	res, err := a.AlarmCheck(ctx, 200)
	require.NoError(t, err)
	assert.Equal(t, alarm.KindHigh, res.Kind)
	assert.Equal(t, "200 mg/dL: High glucose alarm (Alarm)\n", out.String())

	got, err := a.AlarmGet(ctx)
	require.NoError(t, err)
	assert.Equal(t, alarm.DefaultSettings(), got)

	settings, err := a.AlarmSet(ctx, AlarmSetOptions{High: ptr(250)})
	require.NoError(t, err)
	assert.Equal(t, bloodsugar.Value(250), settings.AlarmHigh)
	assert.Equal(t, alarm.SoundAlarm, settings.LowSound)
}

func TestAlarmReset(t *testing.T) {
	a, out := newTestApp(t, func(cfg *config.Config) { cfg.Alarm.High = 200 })
	ctx := context.Background()

	_, err := a.AlarmSet(ctx, AlarmSetOptions{LowSound: ptr("none"), Low: ptr(60)})
	require.NoError(t, err)

	out.Reset()
	settings, err := a.AlarmReset(ctx)
	require.NoError(t, err)
	assert.Equal(t, alarm.SoundAlarm, settings.LowSound)
	assert.Equal(t, bloodsugar.Value(70), settings.AlarmLow)
	assert.Equal(t, bloodsugar.Value(200), settings.AlarmHigh)
	assert.Contains(t, out.String(), "Alarm > 200 mg/dL")

	got, err := a.AlarmGet(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings, got)
}

func TestAlarmSounds(t *testing.T) {
	a, out := newTestApp(t, nil)

	require.NoError(t, a.AlarmSounds())
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, len(alarm.AllSounds()))
	assert.Contains(t, out.String(), "Vibration only")
}

func TestAlarmCheck(t *testing.T) {
	a, out := newTestApp(t, nil)
	ctx := context.Background()

	tests := []struct {
		value    int
		kind     alarm.Kind
		near     bool
		contains string
	}{
		{60, alarm.KindLow, false, "60 mg/dL: Low glucose alarm (Alarm)"},
		{71, alarm.KindNone, true, "Close to an alarm threshold"},
		{120, alarm.KindNone, false, "120 mg/dL: No alarm"},
		{250, alarm.KindHigh, false, "High glucose alarm"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.value), func(t *testing.T) {
			out.Reset()
			res, err := a.AlarmCheck(ctx, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, res.Kind)
			assert.Equal(t, tt.near, res.Near)
			assert.Contains(t, out.String(), tt.contains)
		})
	}

	_, err := a.AlarmCheck(ctx, 1001)
	assert.ErrorIs(t, err, fault.ErrInvalidArgument)
}

func TestAlarmCheckSilencedSound(t *testing.T) {
	a, out := newTestApp(t, nil)
	ctx := context.Background()

	_, err := a.AlarmSet(ctx, AlarmSetOptions{HighSound: ptr("none")})
	require.NoError(t, err)

	out.Reset()
	res, err := a.AlarmCheck(ctx, 250)
	require.NoError(t, err)
	assert.False(t, res.Triggered())
	assert.Contains(t, out.String(), "High glucose alarm (None)")
}
