package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/peerroom-api/internal/models"
)

const roomColumns = `id, name, description, category, image, modules_count, enrolled_users, created_at, updated_at`

type moduleRow struct {
	ID       string `db:"id"`
	RoomID   string `db:"room_id"`
	Position int    `db:"position"`
	Name     string `db:"name"`
	Content  string `db:"content"`
}

// RoomRepository persists rooms and their modules in PostgreSQL.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs a room repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create inserts a room and its modules in one transaction.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create room tx: %w", err)
	}
	const query = `INSERT INTO rooms (id, name, description, category, image, modules_count, enrolled_users, created_at, updated_at)
VALUES (:id, :name, :description, :category, :image, :modules_count, :enrolled_users, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, room); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("create room: %w", err)
	}
	if err := insertModules(ctx, tx, room.ID, room.Modules); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create room tx: %w", err)
	}
	return nil
}

// GetByID fetches a room with its modules. It returns sql.ErrNoRows when absent.
func (r *RoomRepository) GetByID(ctx context.Context, id string) (*models.Room, error) {
	query := fmt.Sprintf(`SELECT %s FROM rooms WHERE id = $1`, roomColumns)
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	var rows []moduleRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, room_id, position, name, content FROM room_modules WHERE room_id = $1 ORDER BY position ASC`, id); err != nil {
		return nil, fmt.Errorf("load room modules: %w", err)
	}
	room.Modules = modulesFromRows(rows)
	return &room, nil
}

// Update replaces the room row and rewrites its module list.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	room.UpdatedAt = time.Now().UTC()
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update room tx: %w", err)
	}
	const query = `UPDATE rooms SET name = :name, description = :description, category = :category, image = :image,
modules_count = :modules_count, enrolled_users = :enrolled_users, updated_at = :updated_at
WHERE id = :id`
	res, err := tx.NamedExecContext(ctx, query, room)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update room: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		_ = tx.Rollback()
		return sql.ErrNoRows
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM room_modules WHERE room_id = $1`, room.ID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear room modules: %w", err)
	}
	if err := insertModules(ctx, tx, room.ID, room.Modules); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update room tx: %w", err)
	}
	return nil
}

// Delete removes a room; modules cascade.
func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}

// List returns a page of rooms matching the explore filter.
func (r *RoomRepository) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error) {
	filter = normalizeRoomFilter(filter)
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d OR category ILIKE $%d)", n, n, n))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("LOWER(category) = LOWER($%d)", len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	orderBy := "LOWER(name) ASC"
	switch filter.SortBy {
	case models.RoomSortEnrolled:
		orderBy = "enrolled_users DESC, LOWER(name) ASC"
	case models.RoomSortCreated:
		orderBy = "created_at DESC, LOWER(name) ASC"
	}
	offset := (filter.Page - 1) * filter.PageSize

	query := fmt.Sprintf(`SELECT %s FROM rooms WHERE %s ORDER BY %s LIMIT %d OFFSET %d`, roomColumns, whereClause, orderBy, filter.PageSize, offset)
	rooms := []models.Room{}
	if err := r.db.SelectContext(ctx, &rooms, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list rooms: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM rooms WHERE %s", whereClause), args...); err != nil {
		return nil, 0, fmt.Errorf("count rooms: %w", err)
	}
	if err := r.attachModules(ctx, rooms); err != nil {
		return nil, 0, err
	}
	return rooms, total, nil
}

// Summary aggregates totals and per-category counts.
func (r *RoomRepository) Summary(ctx context.Context) (models.RoomTotals, []models.CategoryCount, error) {
	var totals models.RoomTotals
	const totalsQuery = `SELECT COUNT(*) AS rooms, COALESCE(SUM(enrolled_users), 0) AS enrolled,
(SELECT COUNT(*) FROM room_modules) AS modules FROM rooms`
	if err := r.db.GetContext(ctx, &totals, totalsQuery); err != nil {
		return models.RoomTotals{}, nil, fmt.Errorf("room totals: %w", err)
	}
	categories := []models.CategoryCount{}
	const categoryQuery = `SELECT category, COUNT(*) AS rooms FROM rooms GROUP BY category ORDER BY rooms DESC, category ASC`
	if err := r.db.SelectContext(ctx, &categories, categoryQuery); err != nil {
		return models.RoomTotals{}, nil, fmt.Errorf("room categories: %w", err)
	}
	return totals, categories, nil
}

func (r *RoomRepository) attachModules(ctx context.Context, rooms []models.Room) error {
	if len(rooms) == 0 {
		return nil
	}
	ids := make([]string, len(rooms))
	for i, room := range rooms {
		ids[i] = room.ID
	}
	var rows []moduleRow
	const query = `SELECT id, room_id, position, name, content FROM room_modules WHERE room_id = ANY($1) ORDER BY room_id, position ASC`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("load modules for rooms: %w", err)
	}
	byRoom := make(map[string][]moduleRow, len(rooms))
	for _, row := range rows {
		byRoom[row.RoomID] = append(byRoom[row.RoomID], row)
	}
	for i := range rooms {
		rooms[i].Modules = modulesFromRows(byRoom[rooms[i].ID])
	}
	return nil
}

func insertModules(ctx context.Context, tx *sqlx.Tx, roomID string, modules []models.Module) error {
	const query = `INSERT INTO room_modules (id, room_id, position, name, content) VALUES (:id, :room_id, :position, :name, :content)`
	for i, m := range modules {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		row := moduleRow{ID: m.ID, RoomID: roomID, Position: i, Name: m.Name, Content: m.Content}
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return fmt.Errorf("insert room module: %w", err)
		}
	}
	return nil
}

func modulesFromRows(rows []moduleRow) []models.Module {
	modules := make([]models.Module, len(rows))
	for i, row := range rows {
		modules[i] = models.Module{ID: row.ID, Name: row.Name, Content: row.Content}
	}
	return modules
}
