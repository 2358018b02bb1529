package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/peerroom-api/internal/models"
	"github.com/noah-isme/peerroom-api/internal/repository"
)

func TestSeederSeedsOnlyEmptyStores(t *testing.T) {
	roomRepo := repository.NewMemoryRoomRepository()
	events := NewEventStore(repository.NewMemoryEventRepository(), nil, nil, nil, nil)
	seeder := NewSeeder(events, roomRepo, "/static/placeholder.png", nil)
	ctx := context.Background()

	result, err := seeder.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Events: 4, Rooms: 2}, result)

	result, err = seeder.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{}, result)

	rooms, _, err := roomRepo.List(ctx, models.RoomFilter{SortBy: models.RoomSortEnrolled})
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "UI/UX Design", rooms[0].Name)
	assert.Equal(t, 42, rooms[0].EnrolledUsers)
	assert.Len(t, rooms[0].Modules, 8)
	assert.Equal(t, "Color Theory", rooms[0].Modules[0].Name)
	assert.Equal(t, "Module 8", rooms[0].Modules[7].Name)
	assert.Equal(t, "/static/placeholder.png", rooms[1].Image)
	assert.Equal(t, "Threats", rooms[1].Modules[1].Name)

	day, err := events.EventsForDay(ctx, "2026-02-05")
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, "Team meeting", day[0].Title)
}

func TestSeederDoesNotMutateTemplates(t *testing.T) {
	seeder := NewSeeder(nil, nil, "", nil)
	_ = seeder.buildRoom(seedRooms[0], 0)
	assert.Len(t, seedRooms[0].Modules, 2)
	assert.Empty(t, seedRooms[0].Modules[0].ID)
}
