package repository

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/peerroom-api/internal/models"
)

// MemoryEventRepository keeps events in process memory in insertion order.
type MemoryEventRepository struct {
	mu     sync.RWMutex
	events []models.Event
}

// NewMemoryEventRepository constructs an empty in-memory event repository.
func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{}
}

func (r *MemoryEventRepository) Create(_ context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *event)
	return nil
}

func (r *MemoryEventRepository) GetByID(_ context.Context, id string) (*models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return nil, sql.ErrNoRows
	}
	event := r.events[idx]
	return &event, nil
}

func (r *MemoryEventRepository) UpdateTitle(_ context.Context, id, title string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return false, nil
	}
	r.events[idx].Title = title
	r.events[idx].UpdatedAt = at
	return true, nil
}

func (r *MemoryEventRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return nil
	}
	r.events = append(r.events[:idx], r.events[idx+1:]...)
	return nil
}

func (r *MemoryEventRepository) ListByDay(_ context.Context, day string) ([]models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Event{}
	for _, e := range r.events {
		if e.Date == day {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *MemoryEventRepository) ListRange(_ context.Context, rng models.EventRange) ([]models.Event, error) {
	r.mu.RLock()
	out := []models.Event{}
	for _, e := range r.events {
		if e.Date >= rng.From && e.Date <= rng.To {
			out = append(out, e)
		}
	}
	r.mu.RUnlock()
	// YYYY-MM-DD sorts lexically; stable keeps insertion order within a day.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *MemoryEventRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events), nil
}

func (r *MemoryEventRepository) indexOf(id string) int {
	for i := range r.events {
		if r.events[i].ID == id {
			return i
		}
	}
	return -1
}
