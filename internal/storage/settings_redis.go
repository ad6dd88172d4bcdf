package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/captcha-dashboard/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisSettingsStore keeps settings in Redis so they survive restarts.
// Each setting is a hash {id, value, updated_at}; an index set tracks keys.
type RedisSettingsStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

var _ SettingsStore = (*RedisSettingsStore)(nil)

// NewRedisSettingsStore creates a settings store on the given client
func NewRedisSettingsStore(client *redis.Client, prefix string) *RedisSettingsStore {
	return &RedisSettingsStore{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (r *RedisSettingsStore) settingKey(key string) string {
	return r.prefix + "setting:" + key
}

func (r *RedisSettingsStore) indexKey() string {
	return r.prefix + "settings"
}

// GetSetting retrieves a setting by key
func (r *RedisSettingsStore) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	fields, err := r.client.HGetAll(ctx, r.settingKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return decodeSetting(key, fields)
}

// SetSetting creates or replaces a setting. The ID is assigned once with
// HSETNX so concurrent writers agree on it.
func (r *RedisSettingsStore) SetSetting(ctx context.Context, key string, value json.RawMessage) (*models.Setting, error) {
	if !json.Valid(value) {
		return nil, fmt.Errorf("setting %s: value is not valid JSON", key)
	}

	hashKey := r.settingKey(key)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, hashKey, "id", uuid.New().String())
		pipe.HSet(ctx, hashKey,
			"value", string(value),
			"updated_at", r.now().UTC().Format(time.RFC3339Nano),
		)
		pipe.SAdd(ctx, r.indexKey(), key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set setting %s: %w", key, err)
	}

	return r.GetSetting(ctx, key)
}

// ListSettings returns all settings ordered by key
func (r *RedisSettingsStore) ListSettings(ctx context.Context) ([]*models.Setting, error) {
	keys, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	sort.Strings(keys)

	out := make([]*models.Setting, 0, len(keys))
	for _, key := range keys {
		st, err := r.GetSetting(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// DeleteSetting removes a setting. Deleting an absent key is not an error.
func (r *RedisSettingsStore) DeleteSetting(ctx context.Context, key string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.settingKey(key))
		pipe.SRem(ctx, r.indexKey(), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}

func decodeSetting(key string, fields map[string]string) (*models.Setting, error) {
	st := &models.Setting{
		ID:    fields["id"],
		Key:   key,
		Value: json.RawMessage(fields["value"]),
	}
	if ts := fields["updated_at"]; ts != "" {
		updatedAt, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("setting %s: bad updated_at: %w", key, err)
		}
		st.UpdatedAt = updatedAt
	}
	return st, nil
}
