package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/captcha-dashboard/internal/models"
	"github.com/google/uuid"
)

// SettingsStore is a key/value store for opaque JSON settings
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (*models.Setting, error)
	SetSetting(ctx context.Context, key string, value json.RawMessage) (*models.Setting, error)
	ListSettings(ctx context.Context) ([]*models.Setting, error)
	DeleteSetting(ctx context.Context, key string) error
}

func cloneSetting(st *models.Setting) *models.Setting {
	c := *st
	c.Value = append(json.RawMessage(nil), st.Value...)
	return &c
}

// MemorySettingsStore keeps settings in a map
type MemorySettingsStore struct {
	mu       sync.RWMutex
	now      func() time.Time
	settings map[string]*models.Setting
}

// NewMemorySettingsStore creates an empty in-memory settings store
func NewMemorySettingsStore(now func() time.Time) *MemorySettingsStore {
	if now == nil {
		now = time.Now
	}
	return &MemorySettingsStore{
		now:      now,
		settings: make(map[string]*models.Setting),
	}
}

// GetSetting retrieves a setting by key
func (m *MemorySettingsStore) GetSetting(_ context.Context, key string) (*models.Setting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.settings[key]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSetting(st), nil
}

// SetSetting creates or replaces a setting. The ID is kept across updates.
func (m *MemorySettingsStore) SetSetting(_ context.Context, key string, value json.RawMessage) (*models.Setting, error) {
	if !json.Valid(value) {
		return nil, fmt.Errorf("setting %s: value is not valid JSON", key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.settings[key]
	if !ok {
		st = &models.Setting{ID: uuid.New().String(), Key: key}
		m.settings[key] = st
	}
	st.Value = append(json.RawMessage(nil), value...)
	st.UpdatedAt = m.now()
	return cloneSetting(st), nil
}

// ListSettings returns all settings ordered by key
func (m *MemorySettingsStore) ListSettings(_ context.Context) ([]*models.Setting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Setting, 0, len(m.settings))
	for _, st := range m.settings {
		out = append(out, cloneSetting(st))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// DeleteSetting removes a setting. Deleting an absent key is not an error.
func (m *MemorySettingsStore) DeleteSetting(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.settings, key)
	return nil
}

// GetSetting delegates to the configured settings backend
func (s *Store) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	return s.settings.GetSetting(ctx, key)
}

// SetSetting delegates to the configured settings backend
func (s *Store) SetSetting(ctx context.Context, key string, value json.RawMessage) (*models.Setting, error) {
	return s.settings.SetSetting(ctx, key, value)
}

// ListSettings delegates to the configured settings backend
func (s *Store) ListSettings(ctx context.Context) ([]*models.Setting, error) {
	return s.settings.ListSettings(ctx)
}

// DeleteSetting delegates to the configured settings backend
func (s *Store) DeleteSetting(ctx context.Context, key string) error {
	return s.settings.DeleteSetting(ctx, key)
}
