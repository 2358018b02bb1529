package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/peerroom-api/internal/models"
)

const upsertSettingQuery = `INSERT INTO ui_settings (key, value, type, updated_at)
VALUES (:key, :value, :type, :updated_at)
ON CONFLICT (key)
DO UPDATE SET value = EXCLUDED.value, type = EXCLUDED.type, updated_at = EXCLUDED.updated_at`

// SettingsRepository persists interface preferences in PostgreSQL.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository constructs the repository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// List returns every stored setting ordered by key.
func (r *SettingsRepository) List(ctx context.Context) ([]models.Setting, error) {
	settings := []models.Setting{}
	if err := r.db.SelectContext(ctx, &settings, `SELECT key, value, type, updated_at FROM ui_settings ORDER BY key ASC`); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return settings, nil
}

// BulkUpsert performs upserts within a transaction.
func (r *SettingsRepository) BulkUpsert(ctx context.Context, settings []models.Setting) error {
	if len(settings) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin settings tx: %w", err)
	}
	for i := range settings {
		settings[i].UpdatedAt = time.Now().UTC()
		if _, err := tx.NamedExecContext(ctx, upsertSettingQuery, settings[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert setting %s: %w", settings[i].Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settings tx: %w", err)
	}
	return nil
}
