package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/peerroom-api/internal/repository"
	"github.com/noah-isme/peerroom-api/internal/service"
	"github.com/noah-isme/peerroom-api/pkg/config"
	"github.com/noah-isme/peerroom-api/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "roomctl",
	Short: "roomctl - PeerRoom administration",
	Long: `roomctl manages the PeerRoom storage selected by STORAGE_DRIVER.

It applies the Postgres schema, loads the demo rooms and events, and lists or
exports what is stored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// app holds the services a command works with.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	backends *repository.Backends
	events   *service.EventStore
	rooms    *service.RoomDraftStore
	exports  *service.ExportService
}

func (a *app) Close() {
	a.backends.Close()
	_ = a.logger.Sync()
}

// openApp is replaced in tests.
var openApp = func(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	backends, err := repository.OpenBackends(ctx, cfg, logr)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, logr, backends), nil
}

func newApp(cfg *config.Config, logr *zap.Logger, backends *repository.Backends) *app {
	validate := service.NewValidator()
	events := service.NewEventStore(backends.Events, validate, nil, nil, logr)
	rooms := service.NewRoomDraftStore(backends.Rooms, backends.Drafts, validate, nil, nil, logr, service.RoomStoreConfig{
		PlaceholderImage: cfg.Rooms.PlaceholderImage,
		PageSize:         cfg.Rooms.PageSize,
	})
	return &app{
		cfg:      cfg,
		logger:   logr,
		backends: backends,
		events:   events,
		rooms:    rooms,
		exports:  service.NewExportService(rooms, events, logr),
	}
}

// Execute runs the root command.
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		return err
	}
	return nil
}

func withApp(run func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd, args, a)
	}
}
