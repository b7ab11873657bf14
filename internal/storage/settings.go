package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jwulff/glucose-go/internal/alarm"
)

// AlarmSettingsKey is the config key holding the alarm settings.
const AlarmSettingsKey = "alarm.settings"

// SettingsPersister stores alarm settings as JSON in the config table.
type SettingsPersister struct {
	store Store
}

// NewSettingsPersister wraps store.
func NewSettingsPersister(store Store) *SettingsPersister {
	return &SettingsPersister{store: store}
}

// LoadSettings reads the stored settings. ok is false when none are stored.
func (p *SettingsPersister) LoadSettings(ctx context.Context) (alarm.Settings, bool, error) {
	raw, err := p.store.GetConfig(ctx, AlarmSettingsKey)
	if IsNotFound(err) {
		return alarm.Settings{}, false, nil
	}
	if err != nil {
		return alarm.Settings{}, false, err
	}

	var s alarm.Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return alarm.Settings{}, false, fmt.Errorf("failed to unmarshal alarm settings: %w", err)
	}
	return s, true, nil
}

// SaveSettings writes s.
func (p *SettingsPersister) SaveSettings(ctx context.Context, s alarm.Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal alarm settings: %w", err)
	}
	return p.store.SetConfig(ctx, AlarmSettingsKey, string(data))
}

// ClearSettings removes the stored settings.
func (p *SettingsPersister) ClearSettings(ctx context.Context) error {
	return p.store.DeleteConfig(ctx, AlarmSettingsKey)
}

var _ alarm.Persister = (*SettingsPersister)(nil)
