package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goodsign/monday"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/jwulff/glucose-go/internal/alarm"
	"github.com/jwulff/glucose-go/internal/bloodsugar"
	"github.com/jwulff/glucose-go/internal/config"
	"github.com/jwulff/glucose-go/internal/dexcom"
	"github.com/jwulff/glucose-go/internal/i18n"
	"github.com/jwulff/glucose-go/internal/logging"
	"github.com/jwulff/glucose-go/internal/numfmt"
	"github.com/jwulff/glucose-go/internal/storage"
	"github.com/jwulff/glucose-go/internal/storage/sqlite"
)

// ReadingSource yields recent readings, newest first.
type ReadingSource interface {
	FetchReadings(ctx context.Context, maxCount, minutes int) ([]bloodsugar.Reading, error)
}

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	// Out receives command output.
	Out io.Writer

	locale    language.Tag
	requested language.Tag
	dates     monday.Locale
	localizer i18n.Localizer
	numbers   *numfmt.Formatter
	glucose   *bloodsugar.Formatter
	unit      bloodsugar.Unit
	now       func() time.Time
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	catalog, err := i18n.Load()
	if err != nil {
		return nil, fmt.Errorf("load locales: %w", err)
	}
	unit, err := cfg.Unit()
	if err != nil {
		return nil, err
	}

	requested := i18n.MatchTag(cfg.Display.Locale)
	tag := catalog.Match(requested)
	if !sameLanguage(requested, tag) {
		supported := make([]string, 0, len(catalog.Tags()))
		for _, t := range catalog.Tags() {
			supported = append(supported, t.String())
		}
		logger.Warn().
			Str("locale", cfg.Display.Locale).
			Strs("supported", supported).
			Str("using", tag.String()).
			Msg("display locale not supported")
	}
	localizer := catalog.Localizer(tag)
	numbers := numfmt.New(catalog.Symbols(tag))

	a := &App{
		Config:    cfg,
		Logger:    logging.Component(logger, "app"),
		Out:       os.Stdout,
		locale:    tag,
		requested: requested,
		dates:     i18n.DateLocale(tag),
		localizer: localizer,
		numbers:   numbers,
		glucose:   bloodsugar.NewFormatter(numbers, localizer),
		unit:      unit,
		now:       time.Now,
	}
	a.Logger.Debug().Str("locale", tag.String()).Str("unit", unit.String()).Msg("application ready")
	return a, nil
}

func sameLanguage(a, b language.Tag) bool {
	ab, _ := a.Base()
	bb, _ := b.Base()
	return ab == bb
}

func (a *App) mode() bloodsugar.Mode {
	return bloodsugar.Mode{WithUnit: true, Precise: a.Config.Display.Precise}
}

func (a *App) openStore() (storage.Store, func(), error) {
	var (
		store *sqlite.Store
		err   error
	)
	if a.Config.Storage.Path == ":memory:" {
		store, err = sqlite.NewMemoryStore()
	} else {
		store, err = sqlite.NewFileStore(a.Config.Storage.Path)
	}
	if err != nil {
		return nil, nil, err
	}

	closer := func() {
		if err := store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("failed to close store")
		}
	}
	return store, closer, nil
}

func (a *App) newSource() (ReadingSource, error) {
	if !a.Config.HasDexcomCredentials() {
		return nil, errors.New("dexcom.username and dexcom.password must be configured")
	}
	return dexcom.NewClient(dexcom.Options{
		BaseURL:  a.Config.Dexcom.BaseURL,
		Username: a.Config.Dexcom.Username,
		Password: a.Config.Dexcom.Password,
		Timeout:  a.Config.Dexcom.Timeout,
	}, a.Logger), nil
}

func (a *App) newAlarmStore(ctx context.Context, store storage.Store, tester alarm.SoundTester) (*alarm.Store, error) {
	defaults, err := a.Config.AlarmDefaults()
	if err != nil {
		return nil, err
	}
	return alarm.NewStore(ctx, alarm.Options{
		Persister:   storage.NewSettingsPersister(store),
		SoundTester: tester,
		Defaults:    &defaults,
	}, a.Logger)
}

// alarmSettings reads the settings through a short-lived alarm.Store, so
// invalid stored settings fall back to the configured defaults.
func (a *App) alarmSettings(ctx context.Context, store storage.Store) (alarm.Settings, error) {
	alarms, err := a.newAlarmStore(ctx, store, nil)
	if err != nil {
		return alarm.Settings{}, err
	}
	defer alarms.Close()
	return alarms.State(ctx)
}

// FormatOptions configure the format command.
type FormatOptions struct {
	Value    int
	Unit     string // empty uses display.unit
	Precise  bool
	WithUnit bool
}

// ConvertOptions configure the convert command.
type ConvertOptions struct {
	Value float64
	From  string
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit int
}

// StatsOptions configure the stats command. A non-zero Since takes
// precedence over Window.
type StatsOptions struct {
	Window time.Duration
	Since  time.Time
}

// WatchOptions configure the watch loop.
type WatchOptions struct {
	// Iterations stops the loop after that many polls; zero runs until cancelled.
	Iterations int
}

// AlarmSetOptions carry the changes requested by alarm set. Nil fields are
// left untouched.
type AlarmSetOptions struct {
	LowSound        *string
	HighSound       *string
	ConnectionSound *string
	ExpiringSound   *string
	IgnoreMute      *bool
	Low             *int
	High            *int
	// Preview announces each newly selected sound.
	Preview bool
}
