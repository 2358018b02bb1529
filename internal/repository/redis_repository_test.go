package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/peerroom-api/internal/models"
	appErrors "github.com/noah-isme/peerroom-api/pkg/errors"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisEventRepositoryKeepsInsertionOrderPerDay(t *testing.T) {
	_, client := newTestRedis(t)
	repo := NewRedisEventRepository(client, "test")
	ctx := context.Background()

	titles := []string{"Call peer", "Review notes", "Group study"}
	for _, title := range titles {
		require.NoError(t, repo.Create(ctx, &models.Event{Date: "2026-02-15", Title: title}))
	}
	require.NoError(t, repo.Create(ctx, &models.Event{Date: "2026-02-05", Title: "Team meeting"}))

	day, err := repo.ListByDay(ctx, "2026-02-15")
	require.NoError(t, err)
	require.Len(t, day, 3)
	for i, title := range titles {
		assert.Equal(t, title, day[i].Title)
	}

	month, err := repo.ListRange(ctx, models.EventRange{From: "2026-02-01", To: "2026-02-28"})
	require.NoError(t, err)
	require.Len(t, month, 4)
	assert.Equal(t, "Team meeting", month[0].Title)
	assert.Equal(t, "Call peer", month[1].Title)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
}

func TestRedisEventRepositoryUpdateAndDelete(t *testing.T) {
	_, client := newTestRedis(t)
	repo := NewRedisEventRepository(client, "test")
	ctx := context.Background()

	event := &models.Event{Date: "2026-02-18", Title: "Connect with mentor"}
	require.NoError(t, repo.Create(ctx, event))

	ok, err := repo.UpdateTitle(ctx, event.ID, "Mentor sync", time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateTitle(ctx, "missing", "x", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mentor sync", got.Title)
	assert.Equal(t, "2026-02-18", got.Date)

	require.NoError(t, repo.Delete(ctx, event.ID))
	require.NoError(t, repo.Delete(ctx, event.ID))
	_, err = repo.GetByID(ctx, event.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	day, err := repo.ListByDay(ctx, "2026-02-18")
	require.NoError(t, err)
	assert.Empty(t, day)
}

func TestRedisRoomRepositoryCRUD(t *testing.T) {
	_, client := newTestRedis(t)
	repo := NewRedisRoomRepository(client, "test")
	ctx := context.Background()

	room := &models.Room{Name: "UI/UX Design", Description: "Design basics", Category: "Design", ModulesCount: 1,
		Modules: []models.Module{{ID: "m1", Name: "Color Theory", Content: "Basics of colors"}}, EnrolledUsers: 42}
	require.NoError(t, repo.Create(ctx, room))
	require.NotEmpty(t, room.ID)

	got, err := repo.GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "Color Theory", got.Modules[0].Name)

	got.Name = "UI/UX Design II"
	require.NoError(t, repo.Update(ctx, got))
	again, err := repo.GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "UI/UX Design II", again.Name)
	assert.True(t, again.CreatedAt.Equal(room.CreatedAt))

	err = repo.Update(ctx, &models.Room{ID: "missing"})
	assert.ErrorIs(t, err, sql.ErrNoRows)

	rooms, total, err := repo.List(ctx, models.RoomFilter{Search: "ui/ux"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, rooms, 1)

	totals, categories, err := repo.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RoomTotals{Rooms: 1, Enrolled: 42, Modules: 1}, totals)
	assert.Equal(t, []models.CategoryCount{{Category: "Design", Rooms: 1}}, categories)

	require.NoError(t, repo.Delete(ctx, room.ID))
	_, total, err = repo.List(ctx, models.RoomFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRedisDraftRepositoryExpires(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := NewRedisDraftRepository(client, "test", time.Minute)
	ctx := context.Background()

	_, err := repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	draft := models.NewRoomDraft()
	draft.Name = "Go 101"
	require.NoError(t, repo.Save(ctx, "s1", draft))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Go 101", got.Name)

	mr.FastForward(2 * time.Minute)
	_, err = repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRedisSettingsRepository(t *testing.T) {
	_, client := newTestRedis(t)
	repo := NewRedisSettingsRepository(client, "test")
	ctx := context.Background()

	require.NoError(t, repo.BulkUpsert(ctx, []models.Setting{
		{Key: "theme", Value: "dark", Type: models.SettingTypeString},
		{Key: "sidebar_collapsed", Value: "true", Type: models.SettingTypeBoolean},
	}))
	settings, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, settings, 2)
	assert.Equal(t, "sidebar_collapsed", settings[0].Key)
	assert.Equal(t, "dark", settings[1].Value)
}

func TestCacheRepository(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := NewCacheRepository(client, "test")
	ctx := context.Background()

	var out map[string]int
	assert.ErrorIs(t, repo.Get(ctx, "dash:summary", &out), appErrors.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "dash:summary", map[string]int{"rooms": 2}, time.Minute))
	require.NoError(t, repo.Set(ctx, "other", 1, time.Minute))
	require.NoError(t, repo.Get(ctx, "dash:summary", &out))
	assert.Equal(t, 2, out["rooms"])
	assert.True(t, mr.Exists("test:cache:dash:summary"))

	require.NoError(t, repo.DeleteByPattern(ctx, "dash:*"))
	assert.False(t, mr.Exists("test:cache:dash:summary"))
	assert.True(t, mr.Exists("test:cache:other"))

	nilRepo := NewCacheRepository(nil, "test")
	assert.ErrorIs(t, nilRepo.Get(ctx, "x", &out), appErrors.ErrCacheMiss)
	assert.NoError(t, nilRepo.Set(ctx, "x", 1, time.Minute))
}
