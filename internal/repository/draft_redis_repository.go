package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/peerroom-api/internal/models"
)

// RedisDraftRepository stores session drafts as JSON values with a sliding TTL.
type RedisDraftRepository struct {
	client *redis.Client
	keys   redisKeys
	ttl    time.Duration
}

// NewRedisDraftRepository constructs the repository.
func NewRedisDraftRepository(client *redis.Client, prefix string, ttl time.Duration) *RedisDraftRepository {
	return &RedisDraftRepository{client: client, keys: newRedisKeys(prefix), ttl: ttl}
}

func (r *RedisDraftRepository) Get(ctx context.Context, session string) (*models.RoomDraft, error) {
	raw, err := r.client.Get(ctx, r.keys.draft(session)).Bytes()
	if err == redis.Nil {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("redis get draft %s: %w", session, err)
	}
	var draft models.RoomDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("unmarshal draft %s: %w", session, err)
	}
	return &draft, nil
}

func (r *RedisDraftRepository) Save(ctx context.Context, session string, draft *models.RoomDraft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft %s: %w", session, err)
	}
	if err := r.client.Set(ctx, r.keys.draft(session), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis save draft %s: %w", session, err)
	}
	return nil
}

func (r *RedisDraftRepository) Delete(ctx context.Context, session string) error {
	if err := r.client.Del(ctx, r.keys.draft(session)).Err(); err != nil {
		return fmt.Errorf("redis delete draft %s: %w", session, err)
	}
	return nil
}
