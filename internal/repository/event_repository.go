package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/peerroom-api/internal/models"
)

const eventColumns = `id, to_char(event_date, 'YYYY-MM-DD') AS event_date, title, created_at, updated_at`

// EventRepository persists calendar events in PostgreSQL.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts an event. The seq column keeps insertion order stable.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now
	const query = `INSERT INTO events (id, event_date, title, created_at, updated_at)
VALUES (:id, :event_date, :title, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// GetByID fetches an event. It returns sql.ErrNoRows when absent.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns)
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateTitle replaces only the title. It reports whether a row matched.
func (r *EventRepository) UpdateTitle(ctx context.Context, id, title string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE events SET title = $1, updated_at = $2 WHERE id = $3`, title, at, id)
	if err != nil {
		return false, fmt.Errorf("update event title: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update event rows affected: %w", err)
	}
	return affected > 0, nil
}

// Delete removes an event. Missing rows are not an error.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// ListByDay returns every event on day in insertion order.
func (r *EventRepository) ListByDay(ctx context.Context, day string) ([]models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE event_date = $1 ORDER BY seq ASC`, eventColumns)
	events := []models.Event{}
	if err := r.db.SelectContext(ctx, &events, query, day); err != nil {
		return nil, fmt.Errorf("list events by day: %w", err)
	}
	return events, nil
}

// ListRange returns events between rng.From and rng.To ordered by day, then insertion.
func (r *EventRepository) ListRange(ctx context.Context, rng models.EventRange) ([]models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE event_date BETWEEN $1 AND $2 ORDER BY event_date ASC, seq ASC`, eventColumns)
	events := []models.Event{}
	if err := r.db.SelectContext(ctx, &events, query, rng.From, rng.To); err != nil {
		return nil, fmt.Errorf("list events by range: %w", err)
	}
	return events, nil
}

// Count returns the number of stored events.
func (r *EventRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM events`); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return total, nil
}
