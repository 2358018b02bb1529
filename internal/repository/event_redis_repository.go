package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/peerroom-api/internal/models"
)

// RedisEventRepository stores each event as a hash, indexed by a per-day sorted set
// (scored by insertion sequence) and a global sorted set scored by day.
type RedisEventRepository struct {
	client *redis.Client
	keys   redisKeys
}

// NewRedisEventRepository constructs a Redis backed event repository.
func NewRedisEventRepository(client *redis.Client, prefix string) *RedisEventRepository {
	return &RedisEventRepository{client: client, keys: newRedisKeys(prefix)}
}

func (r *RedisEventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	seq, err := r.client.Incr(ctx, r.keys.eventSeq()).Result()
	if err != nil {
		return fmt.Errorf("redis next event seq: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.keys.event(event.ID), map[string]interface{}{
			"id":         event.ID,
			"date":       event.Date,
			"title":      event.Title,
			"seq":        seq,
			"created_at": formatRedisTime(event.CreatedAt),
			"updated_at": formatRedisTime(event.UpdatedAt),
		})
		pipe.ZAdd(ctx, r.keys.eventDay(event.Date), redis.Z{Score: float64(seq), Member: event.ID})
		pipe.ZAdd(ctx, r.keys.eventsByDate(), redis.Z{Score: dayScore(event.Date), Member: event.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis create event %s: %w", event.ID, err)
	}
	return nil
}

func (r *RedisEventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	fields, err := r.client.HGetAll(ctx, r.keys.event(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get event %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, sql.ErrNoRows
	}
	event, _ := eventFromHash(fields)
	return &event, nil
}

func (r *RedisEventRepository) UpdateTitle(ctx context.Context, id, title string, at time.Time) (bool, error) {
	key := r.keys.event(id)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis check event %s: %w", id, err)
	}
	if exists == 0 {
		return false, nil
	}
	if err := r.client.HSet(ctx, key, "title", title, "updated_at", formatRedisTime(at)).Err(); err != nil {
		return false, fmt.Errorf("redis update event %s: %w", id, err)
	}
	return true, nil
}

func (r *RedisEventRepository) Delete(ctx context.Context, id string) error {
	key := r.keys.event(id)
	day, err := r.client.HGet(ctx, key, "date").Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis load event %s: %w", id, err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.ZRem(ctx, r.keys.eventDay(day), id)
		pipe.ZRem(ctx, r.keys.eventsByDate(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete event %s: %w", id, err)
	}
	return nil
}

func (r *RedisEventRepository) ListByDay(ctx context.Context, day string) ([]models.Event, error) {
	ids, err := r.client.ZRange(ctx, r.keys.eventDay(day), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list day %s: %w", day, err)
	}
	events, _, err := r.load(ctx, ids)
	return events, err
}

func (r *RedisEventRepository) ListRange(ctx context.Context, rng models.EventRange) ([]models.Event, error) {
	ids, err := r.client.ZRangeByScore(ctx, r.keys.eventsByDate(), &redis.ZRangeBy{
		Min: strconv.FormatFloat(dayScore(rng.From), 'f', 0, 64),
		Max: strconv.FormatFloat(dayScore(rng.To), 'f', 0, 64),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list range %s..%s: %w", rng.From, rng.To, err)
	}
	events, seqs, err := r.load(ctx, ids)
	if err != nil {
		return nil, err
	}
	order := make([]int, len(events))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ea, eb := events[order[a]], events[order[b]]
		if ea.Date != eb.Date {
			return ea.Date < eb.Date
		}
		return seqs[order[a]] < seqs[order[b]]
	})
	sorted := make([]models.Event, len(events))
	for i, idx := range order {
		sorted[i] = events[idx]
	}
	return sorted, nil
}

func (r *RedisEventRepository) Count(ctx context.Context) (int, error) {
	n, err := r.client.ZCard(ctx, r.keys.eventsByDate()).Result()
	if err != nil {
		return 0, fmt.Errorf("redis count events: %w", err)
	}
	return int(n), nil
}

// load fetches hashes for ids in order, skipping ids whose hash vanished.
func (r *RedisEventRepository) load(ctx context.Context, ids []string) ([]models.Event, []int64, error) {
	events := []models.Event{}
	if len(ids) == 0 {
		return events, nil, nil
	}
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, r.keys.event(id))
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("redis load events: %w", err)
	}
	seqs := make([]int64, 0, len(ids))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		event, seq := eventFromHash(fields)
		events = append(events, event)
		seqs = append(seqs, seq)
	}
	return events, seqs, nil
}

func eventFromHash(fields map[string]string) (models.Event, int64) {
	seq, _ := strconv.ParseInt(fields["seq"], 10, 64)
	return models.Event{
		ID:        fields["id"],
		Date:      fields["date"],
		Title:     fields["title"],
		CreatedAt: parseRedisTime(fields["created_at"]),
		UpdatedAt: parseRedisTime(fields["updated_at"]),
	}, seq
}
