package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/peerroom-api/internal/models"
)

// RedisRoomRepository stores rooms as JSON documents in a single hash and keeps
// creation order in a sorted set.
type RedisRoomRepository struct {
	client *redis.Client
	keys   redisKeys
}

// NewRedisRoomRepository constructs a Redis backed room repository.
func NewRedisRoomRepository(client *redis.Client, prefix string) *RedisRoomRepository {
	return &RedisRoomRepository{client: client, keys: newRedisKeys(prefix)}
}

func (r *RedisRoomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now

	payload, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("marshal room %s: %w", room.ID, err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.keys.rooms(), room.ID, payload)
		pipe.ZAdd(ctx, r.keys.roomOrder(), redis.Z{Score: float64(room.CreatedAt.UnixNano()), Member: room.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis create room %s: %w", room.ID, err)
	}
	return nil
}

func (r *RedisRoomRepository) GetByID(ctx context.Context, id string) (*models.Room, error) {
	raw, err := r.client.HGet(ctx, r.keys.rooms(), id).Bytes()
	if err == redis.Nil {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("redis get room %s: %w", id, err)
	}
	var room models.Room
	if err := json.Unmarshal(raw, &room); err != nil {
		return nil, fmt.Errorf("unmarshal room %s: %w", id, err)
	}
	return &room, nil
}

func (r *RedisRoomRepository) Update(ctx context.Context, room *models.Room) error {
	current, err := r.GetByID(ctx, room.ID)
	if err != nil {
		return err
	}
	room.CreatedAt = current.CreatedAt
	room.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("marshal room %s: %w", room.ID, err)
	}
	if err := r.client.HSet(ctx, r.keys.rooms(), room.ID, payload).Err(); err != nil {
		return fmt.Errorf("redis update room %s: %w", room.ID, err)
	}
	return nil
}

func (r *RedisRoomRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, r.keys.rooms(), id)
		pipe.ZRem(ctx, r.keys.roomOrder(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete room %s: %w", id, err)
	}
	return nil
}

func (r *RedisRoomRepository) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error) {
	rooms, err := r.all(ctx)
	if err != nil {
		return nil, 0, err
	}
	page, total := applyRoomFilter(rooms, filter)
	return page, total, nil
}

func (r *RedisRoomRepository) Summary(ctx context.Context) (models.RoomTotals, []models.CategoryCount, error) {
	rooms, err := r.all(ctx)
	if err != nil {
		return models.RoomTotals{}, nil, err
	}
	totals, categories := summarizeRooms(rooms)
	return totals, categories, nil
}

func (r *RedisRoomRepository) all(ctx context.Context) ([]models.Room, error) {
	ids, err := r.client.ZRange(ctx, r.keys.roomOrder(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list room order: %w", err)
	}
	if len(ids) == 0 {
		return []models.Room{}, nil
	}
	values, err := r.client.HMGet(ctx, r.keys.rooms(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis load rooms: %w", err)
	}
	rooms := make([]models.Room, 0, len(values))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		var room models.Room
		if err := json.Unmarshal([]byte(raw), &room); err != nil {
			return nil, fmt.Errorf("unmarshal room %s: %w", ids[i], err)
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}
