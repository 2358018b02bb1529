package repository

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/peerroom-api/internal/models"
	"github.com/noah-isme/peerroom-api/pkg/config"
)

func TestOpenBackendsMemory(t *testing.T) {
	cfg := &config.Config{StorageDriver: config.StorageMemory, Rooms: config.RoomsConfig{DraftTTL: time.Hour}}

	b, err := OpenBackends(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &MemoryEventRepository{}, b.Events)
	assert.IsType(t, &MemoryRoomRepository{}, b.Rooms)
	assert.IsType(t, &MemoryDraftRepository{}, b.Drafts)
	assert.Nil(t, b.Cache)
	assert.NoError(t, b.Ping(context.Background()))
}

func TestOpenBackendsRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	cfg := &config.Config{
		StorageDriver: config.StorageRedis,
		Redis:         config.RedisConfig{Enabled: true, Host: mr.Host(), Port: port, Prefix: "it"},
		Rooms:         config.RoomsConfig{DraftTTL: time.Hour},
	}
	ctx := context.Background()

	b, err := OpenBackends(ctx, cfg, nil)
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &RedisEventRepository{}, b.Events)
	assert.IsType(t, &RedisDraftRepository{}, b.Drafts)
	require.NotNil(t, b.Cache)
	require.NoError(t, b.Events.Create(ctx, &models.Event{Date: "2026-02-15", Title: "Call peer"}))
	assert.NotEmpty(t, mr.Keys())
	assert.NoError(t, b.Ping(ctx))
}

func TestOpenBackendsRedisDriverRequiresRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	mr.Close()

	cfg := &config.Config{
		StorageDriver: config.StorageRedis,
		Redis:         config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: port},
	}
	_, err = OpenBackends(context.Background(), cfg, nil)
	assert.Error(t, err)
}
