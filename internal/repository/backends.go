package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/peerroom-api/internal/models"
	"github.com/noah-isme/peerroom-api/pkg/config"
	"github.com/noah-isme/peerroom-api/pkg/database"
)

// EventStorage is implemented by every event repository driver.
type EventStorage interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	UpdateTitle(ctx context.Context, id, title string, at time.Time) (bool, error)
	Delete(ctx context.Context, id string) error
	ListByDay(ctx context.Context, day string) ([]models.Event, error)
	ListRange(ctx context.Context, rng models.EventRange) ([]models.Event, error)
	Count(ctx context.Context) (int, error)
}

// RoomStorage is implemented by every room repository driver.
type RoomStorage interface {
	Create(ctx context.Context, room *models.Room) error
	GetByID(ctx context.Context, id string) (*models.Room, error)
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error)
	Summary(ctx context.Context) (models.RoomTotals, []models.CategoryCount, error)
}

// DraftStorage keeps one room draft per session.
type DraftStorage interface {
	Get(ctx context.Context, session string) (*models.RoomDraft, error)
	Save(ctx context.Context, session string, draft *models.RoomDraft) error
	Delete(ctx context.Context, session string) error
}

// SettingsStorage persists UI settings as key/value pairs.
type SettingsStorage interface {
	List(ctx context.Context) ([]models.Setting, error)
	BulkUpsert(ctx context.Context, settings []models.Setting) error
}

// Backends is the set of repositories selected by STORAGE_DRIVER plus the raw
// clients they were built on. DB and Redis are nil when unused.
type Backends struct {
	Driver   string
	Events   EventStorage
	Rooms    RoomStorage
	Drafts   DraftStorage
	Settings SettingsStorage
	Cache    *CacheRepository
	DB       *sqlx.DB
	Redis    *redis.Client
}

// OpenBackends connects the configured driver. Drafts always live in Redis when a
// Redis connection is configured and in process memory otherwise.
func OpenBackends(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backends, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Backends{Driver: cfg.StorageDriver}

	if cfg.Redis.Enabled {
		client, err := database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			if cfg.StorageDriver == config.StorageRedis {
				return nil, fmt.Errorf("connect redis: %w", err)
			}
			logger.Warn("redis unavailable, continuing without cache", zap.Error(err))
		} else {
			b.Redis = client
		}
	}

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.DB = db
		b.Events = NewEventRepository(db)
		b.Rooms = NewRoomRepository(db)
		b.Settings = NewSettingsRepository(db)
	case config.StorageRedis:
		b.Events = NewRedisEventRepository(b.Redis, cfg.Redis.Prefix)
		b.Rooms = NewRedisRoomRepository(b.Redis, cfg.Redis.Prefix)
		b.Settings = NewRedisSettingsRepository(b.Redis, cfg.Redis.Prefix)
	default:
		b.Events = NewMemoryEventRepository()
		b.Rooms = NewMemoryRoomRepository()
		b.Settings = NewMemorySettingsRepository()
	}

	if b.Redis != nil {
		b.Drafts = NewRedisDraftRepository(b.Redis, cfg.Redis.Prefix, cfg.Rooms.DraftTTL)
		b.Cache = NewCacheRepository(b.Redis, cfg.Redis.Prefix)
	} else {
		b.Drafts = NewMemoryDraftRepository(cfg.Rooms.DraftTTL)
	}

	logger.Info("storage ready",
		zap.String("driver", b.Driver),
		zap.Bool("postgres", b.DB != nil),
		zap.Bool("redis", b.Redis != nil),
	)
	return b, nil
}

// Ping reports whether every connected backend answers.
func (b *Backends) Ping(ctx context.Context) error {
	if b.DB != nil {
		if err := b.DB.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	if b.Redis != nil {
		if err := b.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Close releases every connection.
func (b *Backends) Close() {
	if b.DB != nil {
		_ = b.DB.Close()
	}
	if b.Redis != nil {
		_ = b.Redis.Close()
	}
}
