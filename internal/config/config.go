package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/jwulff/glucose-go/internal/alarm"
	"github.com/jwulff/glucose-go/internal/bloodsugar"
	"github.com/jwulff/glucose-go/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App     AppConfig      `mapstructure:"app"`
	Logging logging.Config `mapstructure:"logging"`
	Display DisplayConfig  `mapstructure:"display"`
	Alarm   AlarmConfig    `mapstructure:"alarm"`
	Dexcom  DexcomConfig   `mapstructure:"dexcom"`
	Storage StorageConfig  `mapstructure:"storage"`
	Watch   WatchConfig    `mapstructure:"watch"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DisplayConfig controls how values are rendered.
type DisplayConfig struct {
	Unit    string `mapstructure:"unit"`
	Precise bool   `mapstructure:"precise"`
	Locale  string `mapstructure:"locale"`
}

// AlarmConfig holds the alarm settings used until some are stored.
type AlarmConfig struct {
	Low             int    `mapstructure:"low"`
	High            int    `mapstructure:"high"`
	LowSound        string `mapstructure:"low_sound"`
	HighSound       string `mapstructure:"high_sound"`
	ConnectionSound string `mapstructure:"connection_sound"`
	ExpiringSound   string `mapstructure:"expiring_sound"`
	IgnoreMute      bool   `mapstructure:"ignore_mute"`
}

// DexcomConfig covers Share API access.
type DexcomConfig struct {
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// StorageConfig locates the reading history.
type StorageConfig struct {
	// Path of the SQLite file; ":memory:" keeps everything in process.
	Path      string        `mapstructure:"path"`
	Retention time.Duration `mapstructure:"retention"`
}

// WatchConfig governs the polling loop.
type WatchConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	HistoryMinutes int           `mapstructure:"history_minutes"`
	MaxCount       int           `mapstructure:"max_count"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GLUCOSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "glucose")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("display.unit", "mg/dL")
	v.SetDefault("display.precise", false)
	v.SetDefault("display.locale", "en")

	defaults := alarm.DefaultSettings()
	v.SetDefault("alarm.low", int(defaults.AlarmLow))
	v.SetDefault("alarm.high", int(defaults.AlarmHigh))
	v.SetDefault("alarm.low_sound", string(defaults.LowSound))
	v.SetDefault("alarm.high_sound", string(defaults.HighSound))
	v.SetDefault("alarm.connection_sound", string(defaults.ConnectionSound))
	v.SetDefault("alarm.expiring_sound", string(defaults.ExpiringSound))
	v.SetDefault("alarm.ignore_mute", defaults.IgnoreMute)

	v.SetDefault("dexcom.username", "")
	v.SetDefault("dexcom.password", "")
	v.SetDefault("dexcom.base_url", "https://share2.dexcom.com/ShareWebServices/Services")
	v.SetDefault("dexcom.timeout", "30s")

	v.SetDefault("storage.path", "glucose.db")
	v.SetDefault("storage.retention", "2160h")

	v.SetDefault("watch.interval", "5m")
	v.SetDefault("watch.history_minutes", 1440)
	v.SetDefault("watch.max_count", 288)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if _, err := c.Unit(); err != nil {
		return fmt.Errorf("display.unit: %w", err)
	}
	if _, err := c.AlarmDefaults(); err != nil {
		return fmt.Errorf("alarm: %w", err)
	}
	if c.Dexcom.Timeout <= 0 {
		return fmt.Errorf("dexcom.timeout must be greater than zero")
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path must be set")
	}
	if c.Storage.Retention < 0 {
		return fmt.Errorf("storage.retention cannot be negative")
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be greater than zero")
	}
	if c.Watch.HistoryMinutes <= 0 {
		return fmt.Errorf("watch.history_minutes must be greater than zero")
	}
	if c.Watch.MaxCount <= 0 {
		return fmt.Errorf("watch.max_count must be greater than zero")
	}
	return nil
}

// Unit returns the configured display unit.
func (c *Config) Unit() (bloodsugar.Unit, error) {
	return bloodsugar.ParseUnit(c.Display.Unit)
}

// AlarmDefaults converts the alarm section into validated settings.
func (c *Config) AlarmDefaults() (alarm.Settings, error) {
	var s alarm.Settings
	sounds := []struct {
		name string
		dst  *alarm.Sound
	}{
		{c.Alarm.LowSound, &s.LowSound},
		{c.Alarm.HighSound, &s.HighSound},
		{c.Alarm.ConnectionSound, &s.ConnectionSound},
		{c.Alarm.ExpiringSound, &s.ExpiringSound},
	}
	for _, snd := range sounds {
		parsed, err := alarm.ParseSound(snd.name)
		if err != nil {
			return alarm.Settings{}, err
		}
		*snd.dst = parsed
	}
	s.IgnoreMute = c.Alarm.IgnoreMute
	s.AlarmLow = bloodsugar.Value(c.Alarm.Low)
	s.AlarmHigh = bloodsugar.Value(c.Alarm.High)

	if err := s.Validate(); err != nil {
		return alarm.Settings{}, err
	}
	return s, nil
}

// HasDexcomCredentials reports whether a Share account is configured.
func (c *Config) HasDexcomCredentials() bool {
	return c.Dexcom.Username != "" && c.Dexcom.Password != ""
}
