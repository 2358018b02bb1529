package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/peerroom-api/internal/models"
	appErrors "github.com/noah-isme/peerroom-api/pkg/errors"
)

const (
	settingTheme            = "theme"
	settingSidebarCollapsed = "sidebar_collapsed"
)

type settingsRepository interface {
	List(ctx context.Context) ([]models.Setting, error)
	BulkUpsert(ctx context.Context, settings []models.Setting) error
}

// UISettings is the shared interface state injected into every page.
type UISettings struct {
	Theme            string    `json:"theme"`
	SidebarCollapsed bool      `json:"sidebar_collapsed"`
	UpdatedAt        time.Time `json:"updated_at,omitempty"`
}

// UpdateSettingsRequest changes any subset of the settings.
type UpdateSettingsRequest struct {
	Theme            *string `json:"theme" validate:"omitempty,oneof=light dark"`
	SidebarCollapsed *bool   `json:"sidebar_collapsed"`
}

// SettingsService owns the process-wide UI settings. Defaults come from config and
// are loaded once; stored values override them.
type SettingsService struct {
	mu        sync.RWMutex
	repo      settingsRepository
	validator *validator.Validate
	logger    *zap.Logger
	defaults  UISettings
	current   UISettings
	loaded    bool
}

// NewSettingsService constructs the service with the configured defaults.
func NewSettingsService(repo settingsRepository, validate *validator.Validate, logger *zap.Logger, defaults UISettings) *SettingsService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaults.Theme == "" {
		defaults.Theme = "light"
	}
	return &SettingsService{repo: repo, validator: validate, logger: logger, defaults: defaults, current: defaults}
}

// Load reads persisted settings over the defaults. Unknown keys and bad values are ignored.
func (s *SettingsService) Load(ctx context.Context) (UISettings, error) {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return UISettings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	next := s.defaults
	for _, setting := range stored {
		switch setting.Key {
		case settingTheme:
			if setting.Value == "light" || setting.Value == "dark" {
				next.Theme = setting.Value
			}
		case settingSidebarCollapsed:
			if v, err := strconv.ParseBool(setting.Value); err == nil {
				next.SidebarCollapsed = v
			}
		default:
			s.logger.Debug("ignoring unknown setting", zap.String("key", setting.Key))
			continue
		}
		if setting.UpdatedAt.After(next.UpdatedAt) {
			next.UpdatedAt = setting.UpdatedAt
		}
	}
	s.mu.Lock()
	s.current = next
	s.loaded = true
	s.mu.Unlock()
	return next, nil
}

// Get returns the current settings, loading them on first use.
func (s *SettingsService) Get(ctx context.Context) (UISettings, error) {
	s.mu.RLock()
	current, loaded := s.current, s.loaded
	s.mu.RUnlock()
	if loaded {
		return current, nil
	}
	return s.Load(ctx)
}

// Update validates and persists the provided settings.
func (s *SettingsService) Update(ctx context.Context, req UpdateSettingsRequest) (UISettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return UISettings{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings")
	}
	var changes []models.Setting
	if req.Theme != nil {
		changes = append(changes, models.Setting{Key: settingTheme, Value: *req.Theme, Type: models.SettingTypeString})
	}
	if req.SidebarCollapsed != nil {
		changes = append(changes, models.Setting{Key: settingSidebarCollapsed, Value: strconv.FormatBool(*req.SidebarCollapsed), Type: models.SettingTypeBoolean})
	}
	if len(changes) == 0 {
		return s.Get(ctx)
	}
	if err := s.repo.BulkUpsert(ctx, changes); err != nil {
		return UISettings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save settings")
	}
	return s.Load(ctx)
}
