package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/peerroom-api/internal/models"
	"github.com/noah-isme/peerroom-api/internal/repository"
	appErrors "github.com/noah-isme/peerroom-api/pkg/errors"
)

type failingSettingsRepo struct{}

func (failingSettingsRepo) List(context.Context) ([]models.Setting, error) {
	return nil, errors.New("db down")
}

func (failingSettingsRepo) BulkUpsert(context.Context, []models.Setting) error {
	return errors.New("db down")
}

func TestSettingsServiceDefaults(t *testing.T) {
	svc := NewSettingsService(repository.NewMemorySettingsRepository(), nil, nil, UISettings{Theme: "dark", SidebarCollapsed: true})
	got, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dark", got.Theme)
	assert.True(t, got.SidebarCollapsed)
}

func TestSettingsServiceUpdatePersists(t *testing.T) {
	repo := repository.NewMemorySettingsRepository()
	svc := NewSettingsService(repo, nil, nil, UISettings{})
	ctx := context.Background()

	theme := "dark"
	collapsed := true
	got, err := svc.Update(ctx, UpdateSettingsRequest{Theme: &theme, SidebarCollapsed: &collapsed})
	require.NoError(t, err)
	assert.Equal(t, "dark", got.Theme)
	assert.True(t, got.SidebarCollapsed)

	fresh := NewSettingsService(repo, nil, nil, UISettings{})
	loaded, err := fresh.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, got.Theme, loaded.Theme)
	assert.Equal(t, got.SidebarCollapsed, loaded.SidebarCollapsed)
}

func TestSettingsServiceRejectsUnknownTheme(t *testing.T) {
	svc := NewSettingsService(repository.NewMemorySettingsRepository(), nil, nil, UISettings{})
	theme := "solarized"
	_, err := svc.Update(context.Background(), UpdateSettingsRequest{Theme: &theme})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSettingsServiceIgnoresCorruptValues(t *testing.T) {
	repo := repository.NewMemorySettingsRepository()
	require.NoError(t, repo.BulkUpsert(context.Background(), []models.Setting{
		{Key: "theme", Value: "neon"},
		{Key: "sidebar_collapsed", Value: "maybe"},
		{Key: "legacy", Value: "x"},
	}))
	svc := NewSettingsService(repo, nil, nil, UISettings{Theme: "light"})
	got, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "light", got.Theme)
	assert.False(t, got.SidebarCollapsed)
}

func TestSettingsServiceRepoFailure(t *testing.T) {
	svc := NewSettingsService(failingSettingsRepo{}, nil, nil, UISettings{})
	_, err := svc.Get(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
