package repository

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/peerroom-api/internal/models"
)

// MemoryRoomRepository keeps rooms in process memory in creation order.
type MemoryRoomRepository struct {
	mu    sync.RWMutex
	rooms []models.Room
}

// NewMemoryRoomRepository constructs an empty in-memory room repository.
func NewMemoryRoomRepository() *MemoryRoomRepository {
	return &MemoryRoomRepository{}
}

func (r *MemoryRoomRepository) Create(_ context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms = append(r.rooms, room.Clone())
	return nil
}

func (r *MemoryRoomRepository) GetByID(_ context.Context, id string) (*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return nil, sql.ErrNoRows
	}
	room := r.rooms[idx].Clone()
	return &room, nil
}

// Update replaces the stored room wholesale. It returns sql.ErrNoRows when absent.
func (r *MemoryRoomRepository) Update(_ context.Context, room *models.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(room.ID)
	if idx < 0 {
		return sql.ErrNoRows
	}
	room.CreatedAt = r.rooms[idx].CreatedAt
	room.UpdatedAt = time.Now().UTC()
	r.rooms[idx] = room.Clone()
	return nil
}

func (r *MemoryRoomRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return nil
	}
	r.rooms = append(r.rooms[:idx], r.rooms[idx+1:]...)
	return nil
}

func (r *MemoryRoomRepository) List(_ context.Context, filter models.RoomFilter) ([]models.Room, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	page, total := applyRoomFilter(r.rooms, filter)
	return page, total, nil
}

func (r *MemoryRoomRepository) Summary(_ context.Context) (models.RoomTotals, []models.CategoryCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	totals, categories := summarizeRooms(r.rooms)
	return totals, categories, nil
}

func (r *MemoryRoomRepository) indexOf(id string) int {
	for i := range r.rooms {
		if r.rooms[i].ID == id {
			return i
		}
	}
	return -1
}
