package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/peerroom-api/internal/models"
)

// MemorySettingsRepository keeps settings in process memory.
type MemorySettingsRepository struct {
	mu       sync.RWMutex
	settings map[string]models.Setting
}

// NewMemorySettingsRepository constructs an empty repository.
func NewMemorySettingsRepository() *MemorySettingsRepository {
	return &MemorySettingsRepository{settings: map[string]models.Setting{}}
}

func (r *MemorySettingsRepository) List(_ context.Context) ([]models.Setting, error) {
	r.mu.RLock()
	out := make([]models.Setting, 0, len(r.settings))
	for _, s := range r.settings {
		out = append(out, s)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *MemorySettingsRepository) BulkUpsert(_ context.Context, settings []models.Setting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range settings {
		settings[i].UpdatedAt = time.Now().UTC()
		r.settings[settings[i].Key] = settings[i]
	}
	return nil
}

// RedisSettingsRepository keeps settings as JSON values in one hash.
type RedisSettingsRepository struct {
	client *redis.Client
	keys   redisKeys
}

// NewRedisSettingsRepository constructs the repository.
func NewRedisSettingsRepository(client *redis.Client, prefix string) *RedisSettingsRepository {
	return &RedisSettingsRepository{client: client, keys: newRedisKeys(prefix)}
}

func (r *RedisSettingsRepository) List(ctx context.Context) ([]models.Setting, error) {
	raw, err := r.client.HGetAll(ctx, r.keys.settings()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list settings: %w", err)
	}
	out := make([]models.Setting, 0, len(raw))
	for key, value := range raw {
		var s models.Setting
		if err := json.Unmarshal([]byte(value), &s); err != nil {
			return nil, fmt.Errorf("unmarshal setting %s: %w", key, err)
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *RedisSettingsRepository) BulkUpsert(ctx context.Context, settings []models.Setting) error {
	if len(settings) == 0 {
		return nil
	}
	values := make(map[string]interface{}, len(settings))
	for i := range settings {
		settings[i].UpdatedAt = time.Now().UTC()
		payload, err := json.Marshal(settings[i])
		if err != nil {
			return fmt.Errorf("marshal setting %s: %w", settings[i].Key, err)
		}
		values[settings[i].Key] = payload
	}
	if err := r.client.HSet(ctx, r.keys.settings(), values).Err(); err != nil {
		return fmt.Errorf("redis upsert settings: %w", err)
	}
	return nil
}
