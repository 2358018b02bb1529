package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/noah-isme/peerroom-api/internal/models"
)

type draftEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryDraftRepository keeps one draft per session in memory. Entries expire lazily.
type MemoryDraftRepository struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	drafts map[string]draftEntry
}

// NewMemoryDraftRepository constructs the repository. A non-positive ttl disables expiry.
func NewMemoryDraftRepository(ttl time.Duration) *MemoryDraftRepository {
	return &MemoryDraftRepository{ttl: ttl, now: time.Now, drafts: map[string]draftEntry{}}
}

// Get returns the session draft or sql.ErrNoRows.
func (r *MemoryDraftRepository) Get(_ context.Context, session string) (*models.RoomDraft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.drafts[session]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if !entry.expiresAt.IsZero() && r.now().After(entry.expiresAt) {
		delete(r.drafts, session)
		return nil, sql.ErrNoRows
	}
	var draft models.RoomDraft
	if err := json.Unmarshal(entry.payload, &draft); err != nil {
		return nil, fmt.Errorf("decode draft for %s: %w", session, err)
	}
	return &draft, nil
}

// Save stores a copy of draft so later caller mutations never leak in.
func (r *MemoryDraftRepository) Save(_ context.Context, session string, draft *models.RoomDraft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft for %s: %w", session, err)
	}
	entry := draftEntry{payload: payload}
	if r.ttl > 0 {
		entry.expiresAt = r.now().Add(r.ttl)
	}
	r.mu.Lock()
	r.drafts[session] = entry
	r.mu.Unlock()
	return nil
}

func (r *MemoryDraftRepository) Delete(_ context.Context, session string) error {
	r.mu.Lock()
	delete(r.drafts, session)
	r.mu.Unlock()
	return nil
}
