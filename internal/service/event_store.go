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
	"go.uber.org/zap"

	"github.com/noah-isme/peerroom-api/internal/models"
	appErrors "github.com/noah-isme/peerroom-api/pkg/errors"
	"github.com/noah-isme/peerroom-api/pkg/export"
)

const eventStoreName = "events"

type eventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	UpdateTitle(ctx context.Context, id, title string, at time.Time) (bool, error)
	Delete(ctx context.Context, id string) error
	ListByDay(ctx context.Context, day string) ([]models.Event, error)
	ListRange(ctx context.Context, rng models.EventRange) ([]models.Event, error)
	Count(ctx context.Context) (int, error)
}

// AddEventRequest is the payload for creating an event.
type AddEventRequest struct {
	Date  string `json:"date" validate:"required,yyyymmdd"`
	Title string `json:"title" validate:"required,notblank,max=200"`
}

// UpdateEventRequest is the payload for renaming an event.
type UpdateEventRequest struct {
	Title string `json:"title" validate:"required,notblank,max=200"`
}

// ImportResult summarises an iCalendar import.
type ImportResult struct {
	Imported int            `json:"imported"`
	Skipped  int            `json:"skipped"`
	Events   []models.Event `json:"events"`
}

// EventStore maintains calendar events and answers day-scoped queries.
type EventStore struct {
	mu        sync.Mutex
	repo      eventRepository
	validator *validator.Validate
	ics       *export.ICSCodec
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewEventStore constructs the store.
func NewEventStore(repo eventRepository, validate *validator.Validate, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *EventStore {
	if validate == nil {
		validate = NewValidator()
	} else {
		registerValidations(validate)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventStore{
		repo:      repo,
		validator: validate,
		ics:       export.NewICSCodec("-//peerroom//calendar//EN", "PeerRoom"),
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// AddEvent appends a new event on date. There is no per-day limit.
func (s *EventStore) AddEvent(ctx context.Context, date, title string) (*models.Event, error) {
	req := AddEventRequest{Date: strings.TrimSpace(date), Title: strings.TrimSpace(title)}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date and title are required")
	}
	day, _ := models.ParseDay(req.Date)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	event := &models.Event{Date: day, Title: req.Title, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add event")
	}
	s.metrics.RecordStoreOperation(eventStoreName, "add")
	s.invalidate(ctx)
	s.logger.Debug("event added", zap.String("event_id", event.ID), zap.String("date", day))
	return event, nil
}

// UpdateEvent replaces only the title of an event. An unknown id is a no-op and
// yields a nil event with a nil error.
func (s *EventStore) UpdateEvent(ctx context.Context, id, title string) (*models.Event, error) {
	req := UpdateEventRequest{Title: strings.TrimSpace(title)}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "title is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.repo.UpdateTitle(ctx, id, req.Title, s.now().UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	if !ok {
		return nil, nil
	}
	s.metrics.RecordStoreOperation(eventStoreName, "update")
	s.invalidate(ctx)
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload event")
	}
	return event, nil
}

// DeleteEvent removes an event. Deleting an unknown id succeeds.
func (s *EventStore) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	s.metrics.RecordStoreOperation(eventStoreName, "delete")
	s.invalidate(ctx)
	return nil
}

// EventsForDay returns every event on date in insertion order.
func (s *EventStore) EventsForDay(ctx context.Context, date string) ([]models.Event, error) {
	day, ok := models.ParseDay(date)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.repo.ListByDay(ctx, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	s.metrics.RecordStoreOperation(eventStoreName, "day")
	return events, nil
}

// EventsForMonth groups the events of one month by day.
func (s *EventStore) EventsForMonth(ctx context.Context, year int, month time.Month) (map[string][]models.Event, error) {
	if month < time.January || month > time.December || year < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month must be YYYY-MM")
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	events, err := s.EventsBetween(ctx, models.DayOf(first), models.DayOf(last))
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]models.Event)
	for _, event := range events {
		grouped[event.Date] = append(grouped[event.Date], event)
	}
	return grouped, nil
}

// EventsBetween returns events from..to inclusive, ordered by day then insertion.
func (s *EventStore) EventsBetween(ctx context.Context, from, to string) ([]models.Event, error) {
	rng, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.repo.ListRange(ctx, rng)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return events, nil
}

// GetEvent returns one event or a not-found error.
func (s *EventStore) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get event")
	}
	return event, nil
}

// Count reports the number of stored events.
func (s *EventStore) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count events")
	}
	return n, nil
}

// ExportICS renders the events between from and to as an iCalendar feed.
func (s *EventStore) ExportICS(ctx context.Context, from, to string) ([]byte, error) {
	events, err := s.EventsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	entries := make([]export.CalendarEntry, 0, len(events))
	for _, event := range events {
		day, err := time.Parse(models.DateLayout, event.Date)
		if err != nil {
			s.logger.Warn("skipping event with malformed date", zap.String("event_id", event.ID), zap.String("date", event.Date))
			continue
		}
		entries = append(entries, export.CalendarEntry{
			UID:       event.ID,
			Day:       day,
			Title:     event.Title,
			CreatedAt: event.CreatedAt,
			UpdatedAt: event.UpdatedAt,
		})
	}
	s.metrics.RecordStoreOperation(eventStoreName, "export")
	return s.ics.Render(entries), nil
}

// ImportICS adds every dated VEVENT in body as a new event.
func (s *EventStore) ImportICS(ctx context.Context, body []byte) (*ImportResult, error) {
	entries, skipped, err := s.ics.Parse(body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid calendar file")
	}
	result := &ImportResult{Skipped: skipped, Events: make([]models.Event, 0, len(entries))}
	for _, entry := range entries {
		event, err := s.AddEvent(ctx, models.DayOf(entry.Day), entry.Title)
		if err != nil {
			if appErrors.IsCode(err, appErrors.ErrValidation.Code) {
				result.Skipped++
				continue
			}
			return result, err
		}
		result.Events = append(result.Events, *event)
	}
	result.Imported = len(result.Events)
	s.logger.Info("calendar imported", zap.Int("imported", result.Imported), zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *EventStore) invalidate(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, dashboardCachePattern)
}

func parseRange(from, to string) (models.EventRange, error) {
	start, ok := models.ParseDay(from)
	if !ok {
		return models.EventRange{}, appErrors.Clone(appErrors.ErrValidation, "from must be YYYY-MM-DD")
	}
	end, ok := models.ParseDay(to)
	if !ok {
		return models.EventRange{}, appErrors.Clone(appErrors.ErrValidation, "to must be YYYY-MM-DD")
	}
	if end < start {
		return models.EventRange{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("range %s..%s is inverted", start, end))
	}
	return models.EventRange{From: start, To: end}, nil
}
