package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/peerroom-api/internal/models"
	appErrors "github.com/noah-isme/peerroom-api/pkg/errors"
)

const roomStoreName = "rooms"

type roomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	GetByID(ctx context.Context, id string) (*models.Room, error)
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error)
	Summary(ctx context.Context) (models.RoomTotals, []models.CategoryCount, error)
}

type draftRepository interface {
	Get(ctx context.Context, session string) (*models.RoomDraft, error)
	Save(ctx context.Context, session string, draft *models.RoomDraft) error
	Delete(ctx context.Context, session string) error
}

// RoomStoreConfig tunes room defaults.
type RoomStoreConfig struct {
	PlaceholderImage string
	PageSize         int
}

// UpdateDraftRequest binds the room form. Nil fields are left untouched.
type UpdateDraftRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=120"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Category    *string `json:"category" validate:"omitempty,max=60"`
	Image       *string `json:"image" validate:"omitempty,max=2048"`
}

// ListRoomsRequest describes the explore listing query.
type ListRoomsRequest struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	SortBy   string `form:"sort" validate:"omitempty,oneof=name enrolled created"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"page_size" validate:"omitempty,min=1,max=50"`
}

type roomInput struct {
	Name        string `validate:"required"`
	Description string `validate:"required"`
	Category    string `validate:"required"`
}

// RoomDraftStore manages one editable draft per session and the list of created rooms.
// Every operation holds the store lock for its whole read-modify-write.
type RoomDraftStore struct {
	mu        sync.Mutex
	rooms     roomRepository
	drafts    draftRepository
	validator *validator.Validate
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       RoomStoreConfig
	now       func() time.Time
	newID     func() string
}

// NewRoomDraftStore constructs the store.
func NewRoomDraftStore(rooms roomRepository, drafts draftRepository, validate *validator.Validate, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg RoomStoreConfig) *RoomDraftStore {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 6
	}
	return &RoomDraftStore{
		rooms:     rooms,
		drafts:    drafts,
		validator: validate,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Draft returns the session draft, creating empty defaults on first use.
func (s *RoomDraftStore) Draft(ctx context.Context, session string) (*models.RoomDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft(ctx, session)
}

// LoadDraft copies a persisted room into the session draft, replacing it.
func (s *RoomDraftStore) LoadDraft(ctx context.Context, session, roomID string) (*models.RoomDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	draft := models.DraftFromRoom(*room)
	if err := s.save(ctx, session, draft); err != nil {
		return nil, err
	}
	s.metrics.RecordStoreOperation(roomStoreName, "load_draft")
	return draft, nil
}

// ResetDraft clears the session draft to empty defaults. Persisted rooms are untouched.
func (s *RoomDraftStore) ResetDraft(ctx context.Context, session string) (*models.RoomDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := models.NewRoomDraft()
	if err := s.save(ctx, session, draft); err != nil {
		return nil, err
	}
	s.metrics.RecordStoreOperation(roomStoreName, "reset_draft")
	return draft, nil
}

// SetModulesCount grows the module list with placeholders or truncates it from the end.
// Truncated modules are discarded; growing again creates fresh placeholders.
func (s *RoomDraftStore) SetModulesCount(ctx context.Context, session string, n int) (*models.RoomDraft, error) {
	if n < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "modules_count must not be negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.draft(ctx, session)
	if err != nil {
		return nil, err
	}
	current := len(draft.Modules)
	switch {
	case n > current:
		draft.Modules = append(draft.Modules, s.placeholders(current, n)...)
	case n < current:
		draft.Modules = draft.Modules[:n:n]
	}
	draft.ModulesCount = n
	if err := s.save(ctx, session, draft); err != nil {
		return nil, err
	}
	s.metrics.RecordStoreOperation(roomStoreName, "set_modules_count")
	return draft, nil
}

// UpdateModuleField sets name or content of one draft module. Unknown ids are a no-op.
func (s *RoomDraftStore) UpdateModuleField(ctx context.Context, session, moduleID string, field models.ModuleField, value string) (*models.RoomDraft, error) {
	if field != models.ModuleFieldName && field != models.ModuleFieldContent {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown module field %q", field))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.draft(ctx, session)
	if err != nil {
		return nil, err
	}
	for i := range draft.Modules {
		if draft.Modules[i].ID != moduleID {
			continue
		}
		if field == models.ModuleFieldName {
			draft.Modules[i].Name = value
		} else {
			draft.Modules[i].Content = value
		}
		if err := s.save(ctx, session, draft); err != nil {
			return nil, err
		}
		s.metrics.RecordStoreOperation(roomStoreName, "update_module")
		break
	}
	return draft, nil
}

// UpdateDraft applies the room form fields to the session draft.
func (s *RoomDraftStore) UpdateDraft(ctx context.Context, session string, req UpdateDraftRequest) (*models.RoomDraft, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid draft fields")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.draft(ctx, session)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		draft.Name = *req.Name
	}
	if req.Description != nil {
		draft.Description = *req.Description
	}
	if req.Category != nil {
		draft.Category = *req.Category
	}
	if req.Image != nil {
		draft.Image = strings.TrimSpace(*req.Image)
	}
	if err := s.save(ctx, session, draft); err != nil {
		return nil, err
	}
	s.metrics.RecordStoreOperation(roomStoreName, "update_draft")
	return draft, nil
}

// CreateRoom persists the session draft as a new room and loads it back into the draft.
func (s *RoomDraftStore) CreateRoom(ctx context.Context, session string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.draft(ctx, session)
	if err != nil {
		return nil, err
	}
	room, err := s.roomFromDraft(draft)
	if err != nil {
		return nil, err
	}
	// A draft loaded from an existing room carries that room's module ids.
	for i := range room.Modules {
		room.Modules[i].ID = s.newID()
	}
	now := s.now().UTC()
	room.ID = s.newID()
	room.EnrolledUsers = 0
	room.CreatedAt = now
	room.UpdatedAt = now
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}
	if err := s.save(ctx, session, models.DraftFromRoom(*room)); err != nil {
		return nil, err
	}
	s.metrics.RecordStoreOperation(roomStoreName, "create")
	s.invalidate(ctx)
	s.logger.Info("room created", zap.String("room_id", room.ID), zap.String("category", room.Category))
	return room, nil
}

// UpdateRoom replaces the persisted room targeted by the draft. Without a loaded
// room it is a no-op returning a nil room and nil error.
func (s *RoomDraftStore) UpdateRoom(ctx context.Context, session string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.draft(ctx, session)
	if err != nil {
		return nil, err
	}
	if !draft.Loaded() {
		return nil, nil
	}
	current, err := s.getRoom(ctx, draft.RoomID)
	if err != nil {
		return nil, err
	}
	room, err := s.roomFromDraft(draft)
	if err != nil {
		return nil, err
	}
	room.ID = current.ID
	room.EnrolledUsers = current.EnrolledUsers
	room.CreatedAt = current.CreatedAt
	if err := s.rooms.Update(ctx, room); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update room")
	}
	if err := s.save(ctx, session, models.DraftFromRoom(*room)); err != nil {
		return nil, err
	}
	s.metrics.RecordStoreOperation(roomStoreName, "update")
	s.invalidate(ctx)
	return room, nil
}

// DeleteRoom removes a room and resets the session draft when it targeted that room.
func (s *RoomDraftStore) DeleteRoom(ctx context.Context, session, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rooms.Delete(ctx, roomID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete room")
	}
	if session != "" {
		draft, err := s.draft(ctx, session)
		if err != nil {
			return err
		}
		if draft.RoomID == roomID {
			if err := s.save(ctx, session, models.NewRoomDraft()); err != nil {
				return err
			}
		}
	}
	s.metrics.RecordStoreOperation(roomStoreName, "delete")
	s.invalidate(ctx)
	return nil
}

// ListRooms returns a page of the explore listing.
func (s *RoomDraftStore) ListRooms(ctx context.Context, req ListRoomsRequest) ([]models.Room, *models.Pagination, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid listing query")
	}
	filter := models.RoomFilter{
		Search:   req.Search,
		Category: req.Category,
		SortBy:   models.RoomSort(req.SortBy),
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = s.cfg.PageSize
	}
	rooms, total, err := s.rooms.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	s.metrics.RecordStoreOperation(roomStoreName, "list")
	return rooms, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// GetRoom returns a persisted room or a not-found error.
func (s *RoomDraftStore) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	return s.getRoom(ctx, id)
}

// SetRoomImage points a persisted room at a new image URL.
func (s *RoomDraftStore) SetRoomImage(ctx context.Context, id, image string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.getRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	room.Image = image
	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update room image")
	}
	s.metrics.RecordStoreOperation(roomStoreName, "set_image")
	return room, nil
}

// Summary exposes room totals and category counts.
func (s *RoomDraftStore) Summary(ctx context.Context) (models.RoomTotals, []models.CategoryCount, error) {
	totals, categories, err := s.rooms.Summary(ctx)
	if err != nil {
		return models.RoomTotals{}, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarise rooms")
	}
	return totals, categories, nil
}

func (s *RoomDraftStore) getRoom(ctx context.Context, id string) (*models.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get room")
	}
	return room, nil
}

func (s *RoomDraftStore) draft(ctx context.Context, session string) (*models.RoomDraft, error) {
	if session == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session id is required")
	}
	draft, err := s.drafts.Get(ctx, session)
	if err == nil {
		return draft, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load draft")
	}
	draft = models.NewRoomDraft()
	if err := s.save(ctx, session, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *RoomDraftStore) save(ctx context.Context, session string, draft *models.RoomDraft) error {
	draft.UpdatedAt = s.now().UTC()
	if err := s.drafts.Save(ctx, session, draft); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save draft")
	}
	return nil
}

// roomFromDraft validates the draft and builds a room with modules backfilled to
// modules_count.
func (s *RoomDraftStore) roomFromDraft(draft *models.RoomDraft) (*models.Room, error) {
	input := roomInput{
		Name:        strings.TrimSpace(draft.Name),
		Description: strings.TrimSpace(draft.Description),
		Category:    strings.TrimSpace(draft.Category),
	}
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "name, description and category are required")
	}
	modules := make([]models.Module, len(draft.Modules), max(len(draft.Modules), draft.ModulesCount))
	copy(modules, draft.Modules)
	if len(modules) < draft.ModulesCount {
		modules = append(modules, s.placeholders(len(modules), draft.ModulesCount)...)
	}
	image := draft.Image
	if image == "" {
		image = s.cfg.PlaceholderImage
	}
	return &models.Room{
		Name:         input.Name,
		Description:  input.Description,
		Category:     input.Category,
		Image:        image,
		ModulesCount: len(modules),
		Modules:      modules,
		UpdatedAt:    s.now().UTC(),
	}, nil
}

// placeholders builds modules for positions from..to-1 named "Module <i+1>".
func (s *RoomDraftStore) placeholders(from, to int) []models.Module {
	out := make([]models.Module, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, models.Module{ID: s.newID(), Name: fmt.Sprintf("Module %d", i+1)})
	}
	return out
}

func (s *RoomDraftStore) invalidate(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, dashboardCachePattern)
}
