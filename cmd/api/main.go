package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/peerroom-api/api/swagger"
	"github.com/noah-isme/peerroom-api/internal/handler"
	"github.com/noah-isme/peerroom-api/internal/middleware"
	"github.com/noah-isme/peerroom-api/internal/repository"
	"github.com/noah-isme/peerroom-api/internal/service"
	"github.com/noah-isme/peerroom-api/pkg/config"
	"github.com/noah-isme/peerroom-api/pkg/database"
	"github.com/noah-isme/peerroom-api/pkg/jobs"
	"github.com/noah-isme/peerroom-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/peerroom-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/peerroom-api/pkg/middleware/requestid"
	"github.com/noah-isme/peerroom-api/pkg/storage"
)

// @title PeerRoom API
// @version 0.1.0
// @description Calendar events, learning rooms and the room builder
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backends, err := repository.OpenBackends(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open storage", zap.Error(err))
	}
	defer backends.Close()

	if backends.DB != nil {
		applied, err := database.Migrate(ctx, backends.DB)
		if err != nil {
			logr.Fatal("failed to migrate database", zap.Error(err))
		}
		if len(applied) > 0 {
			logr.Info("migrations applied", zap.Strings("versions", applied))
		}
	}

	metricsSvc := service.NewMetricsService()
	var cacheSvc *service.CacheService
	if backends.Cache != nil {
		cacheSvc = service.NewCacheService(backends.Cache, metricsSvc, cfg.Dashboard.CacheTTL, logr, true)
	}
	validate := service.NewValidator()

	eventStore := service.NewEventStore(backends.Events, validate, cacheSvc, metricsSvc, logr)
	roomStore := service.NewRoomDraftStore(backends.Rooms, backends.Drafts, validate, cacheSvc, metricsSvc, logr, service.RoomStoreConfig{
		PlaceholderImage: cfg.Rooms.PlaceholderImage,
		PageSize:         cfg.Rooms.PageSize,
	})
	settingsSvc := service.NewSettingsService(backends.Settings, validate, logr, service.UISettings{
		Theme:            cfg.UI.DefaultTheme,
		SidebarCollapsed: cfg.UI.SidebarCollapsed,
	})
	if _, err := settingsSvc.Load(ctx); err != nil {
		logr.Fatal("failed to load ui settings", zap.Error(err))
	}
	exportSvc := service.NewExportService(roomStore, eventStore, logr)

	if cfg.SeedMockData {
		if _, err := service.NewSeeder(eventStore, backends.Rooms, cfg.Rooms.PlaceholderImage, logr).SeedIfEmpty(ctx); err != nil {
			logr.Fatal("failed to seed mock data", zap.Error(err))
		}
	}

	files, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare upload storage", zap.Error(err))
	}
	imageSvc := service.NewImageService(roomStore, files, storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL), logr, service.ImageServiceConfig{
		MaxFileSize: cfg.Uploads.MaxFileSizeBytes,
		FilesPath:   cfg.APIPrefix + "/files/",
		RoomsPath:   cfg.APIPrefix + "/rooms/",
	})
	thumbnails := jobs.NewQueue("thumbnails", imageSvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Uploads.Workers,
		MaxRetries: cfg.Uploads.Retries,
		Logger:     logr,
		OnResult: func(job jobs.Job, err error) {
			metricsSvc.RecordJob(job.Type, err)
		},
	})
	thumbnails.Start(ctx)
	defer thumbnails.Stop()
	imageSvc.SetQueue(thumbnails)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(middleware.Session())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metricsSvc, map[string]handler.ReadinessCheck{
		backends.Driver: backends.Ping,
	})
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handlers := handler.Handlers{
		Events:   handler.NewEventHandler(eventStore, exportSvc),
		Rooms:    handler.NewRoomHandler(roomStore, exportSvc, imageSvc),
		Drafts:   handler.NewDraftHandler(roomStore, cfg.Rooms.MaxModules),
		Settings: handler.NewSettingsHandler(settingsSvc),
		Files:    handler.NewFileHandler(imageSvc),
	}
	if cfg.Dashboard.Enabled {
		handlers.Dashboard = handler.NewDashboardHandler(service.NewDashboardService(service.DashboardServiceParams{
			Rooms:   roomStore,
			Events:  eventStore,
			Cache:   cacheSvc,
			Metrics: metricsSvc,
			Logger:  logr,
			Config: service.DashboardServiceConfig{
				CacheTTL:       cfg.Dashboard.CacheTTL,
				UpcomingLimit:  cfg.Dashboard.UpcomingLimit,
				UpcomingWindow: cfg.Dashboard.UpcomingWindow,
			},
		}))
	}
	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "driver", backends.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
