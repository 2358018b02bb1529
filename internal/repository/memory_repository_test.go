package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/peerroom-api/internal/models"
)

func TestMemoryEventRepositoryRangeOrdersByDay(t *testing.T) {
	repo := NewMemoryEventRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Event{Date: "2026-02-22", Title: "Group study"}))
	require.NoError(t, repo.Create(ctx, &models.Event{Date: "2026-02-05", Title: "Team meeting"}))
	require.NoError(t, repo.Create(ctx, &models.Event{Date: "2026-02-22", Title: "Wrap up"}))
	require.NoError(t, repo.Create(ctx, &models.Event{Date: "2026-03-01", Title: "Next month"}))

	events, err := repo.ListRange(ctx, models.EventRange{From: "2026-02-01", To: "2026-02-28"})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "Team meeting", events[0].Title)
	assert.Equal(t, "Group study", events[1].Title)
	assert.Equal(t, "Wrap up", events[2].Title)
}

func TestMemoryEventRepositoryDeleteIsIdempotent(t *testing.T) {
	repo := NewMemoryEventRepository()
	ctx := context.Background()

	event := &models.Event{Date: "2026-02-15", Title: "Call peer"}
	require.NoError(t, repo.Create(ctx, event))
	require.NoError(t, repo.Delete(ctx, event.ID))
	require.NoError(t, repo.Delete(ctx, event.ID))

	_, err := repo.GetByID(ctx, event.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryRoomRepositoryReturnsCopies(t *testing.T) {
	repo := NewMemoryRoomRepository()
	ctx := context.Background()

	room := &models.Room{Name: "Cybersecurity 101", Category: "Technology", ModulesCount: 1,
		Modules: []models.Module{{ID: "m1", Name: "Introduction"}}}
	require.NoError(t, repo.Create(ctx, room))

	got, err := repo.GetByID(ctx, room.ID)
	require.NoError(t, err)
	got.Modules[0].Name = "changed"

	again, err := repo.GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "Introduction", again.Modules[0].Name)
}

func TestMemoryRoomRepositoryListSortsAndPages(t *testing.T) {
	repo := NewMemoryRoomRepository()
	ctx := context.Background()
	for i, name := range []string{"beta", "Alpha", "gamma"} {
		require.NoError(t, repo.Create(ctx, &models.Room{Name: name, Category: "Technology", EnrolledUsers: i * 10}))
	}

	rooms, total, err := repo.List(ctx, models.RoomFilter{PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, rooms, 2)
	assert.Equal(t, "Alpha", rooms[0].Name)
	assert.Equal(t, "beta", rooms[1].Name)

	rooms, _, err = repo.List(ctx, models.RoomFilter{SortBy: models.RoomSortEnrolled})
	require.NoError(t, err)
	assert.Equal(t, "gamma", rooms[0].Name)

	rooms, total, err = repo.List(ctx, models.RoomFilter{Page: 5})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, rooms)
}

func TestMemoryDraftRepositoryTTL(t *testing.T) {
	repo := NewMemoryDraftRepository(time.Minute)
	now := time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	draft := models.NewRoomDraft()
	require.NoError(t, repo.Save(ctx, "s1", draft))
	draft.Name = "mutated after save"

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, got.Name)

	now = now.Add(2 * time.Minute)
	_, err = repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestMemorySettingsRepository(t *testing.T) {
	repo := NewMemorySettingsRepository()
	ctx := context.Background()
	require.NoError(t, repo.BulkUpsert(ctx, []models.Setting{{Key: "theme", Value: "light", Type: models.SettingTypeString}}))
	require.NoError(t, repo.BulkUpsert(ctx, []models.Setting{{Key: "theme", Value: "dark", Type: models.SettingTypeString}}))
	settings, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, settings, 1)
	assert.Equal(t, "dark", settings[0].Value)
}
