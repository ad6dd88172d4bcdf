package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/captcha-dashboard/internal/logging"
	"github.com/captcha-dashboard/internal/storage"
	"github.com/captcha-dashboard/internal/types"
)

// SettingsService reads and writes the well-known settings keys
type SettingsService struct {
	store    *storage.Store
	activity *ActivityService
}

// NewSettingsService creates a new settings service
func NewSettingsService(store *storage.Store, activity *ActivityService) *SettingsService {
	return &SettingsService{store: store, activity: activity}
}

// AutoProcessSetting is the body of the auto-process endpoints
type AutoProcessSetting struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// GetAutoProcess reports whether client-driven auto-processing is on.
// A missing or unreadable value means off.
func (s *SettingsService) GetAutoProcess(ctx context.Context) (bool, error) {
	st, err := s.store.GetSetting(ctx, types.SettingAutoProcess)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storeError(err, "setting", types.SettingAutoProcess)
	}

	var enabled bool
	if err := json.Unmarshal(st.Value, &enabled); err != nil {
		logging.FromContext(ctx).WithError(err).WithField("key", types.SettingAutoProcess).Warn("Ignoring malformed setting value")
		return false, nil
	}
	return enabled, nil
}

// SetAutoProcess stores the toggle
func (s *SettingsService) SetAutoProcess(ctx context.Context, enabled bool) (bool, error) {
	value, _ := json.Marshal(enabled)
	if _, err := s.store.SetSetting(ctx, types.SettingAutoProcess, value); err != nil {
		return false, storeError(err, "setting", types.SettingAutoProcess)
	}

	action := "Auto-process disabled"
	if enabled {
		action = "Auto-process enabled"
	}
	s.activity.Record(ctx, nil, action, "", types.ActivityInfo)
	logging.FromContext(ctx).WithField("enabled", enabled).Info("Auto-process setting changed")
	return enabled, nil
}
