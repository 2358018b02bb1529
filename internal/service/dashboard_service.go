package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/peerroom-api/internal/models"
)

const (
	dashboardCachePattern = "dash:*"
	dashboardCachePrefix  = "dash:summary:"
)

type roomSummarizer interface {
	Summary(ctx context.Context) (models.RoomTotals, []models.CategoryCount, error)
}

type eventRangeLister interface {
	EventsForDay(ctx context.Context, date string) ([]models.Event, error)
	EventsBetween(ctx context.Context, from, to string) ([]models.Event, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL       time.Duration
	UpcomingLimit  int
	UpcomingWindow time.Duration
}

// DashboardService composes platform stats for the dashboard pages.
type DashboardService struct {
	rooms   roomSummarizer
	events  eventRangeLister
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
	cfg     DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Rooms   roomSummarizer
	Events  eventRangeLister
	Cache   *CacheService
	Metrics *MetricsService
	Logger  *zap.Logger
	Config  DashboardServiceConfig
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.UpcomingLimit <= 0 {
		cfg.UpcomingLimit = 5
	}
	if cfg.UpcomingWindow <= 0 {
		cfg.UpcomingWindow = 7 * 24 * time.Hour
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		rooms:   params.Rooms,
		events:  params.Events,
		cache:   params.Cache,
		metrics: params.Metrics,
		logger:  logger,
		now:     time.Now,
		cfg:     cfg,
	}
}

// Summary returns the dashboard stats. The boolean reports a cache hit.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, bool, error) {
	now := s.now()
	var summary models.DashboardSummary
	hit, err := Remember(ctx, s.cache, dashboardCachePrefix+models.DayOf(now), s.cfg.CacheTTL, &summary,
		func(ctx context.Context) (*models.DashboardSummary, error) {
			return s.compute(ctx, now)
		})
	if err != nil {
		return nil, false, err
	}
	return &summary, hit, nil
}

func (s *DashboardService) compute(ctx context.Context, now time.Time) (*models.DashboardSummary, error) {
	today := models.DayOf(now)
	totals, categories, err := s.rooms.Summary(ctx)
	if err != nil {
		return nil, err
	}
	eventsToday, err := s.events.EventsForDay(ctx, today)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.upcoming(ctx, now)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("dashboard summary computed", zap.String("day", today), zap.Int("rooms", totals.Rooms))
	return &models.DashboardSummary{
		TotalRooms:     totals.Rooms,
		TotalEnrolled:  totals.Enrolled,
		TotalModules:   totals.Modules,
		Categories:     categories,
		EventsToday:    eventsToday,
		UpcomingEvents: upcoming,
		GeneratedAt:    now.UTC(),
	}, nil
}

// System returns the runtime metrics snapshot for the admin dashboard.
func (s *DashboardService) System() models.SystemMetrics {
	return s.metrics.Snapshot()
}

// upcoming lists events after today within the window, capped at the configured limit.
func (s *DashboardService) upcoming(ctx context.Context, now time.Time) ([]models.Event, error) {
	from := models.DayOf(now.AddDate(0, 0, 1))
	to := models.DayOf(now.Add(s.cfg.UpcomingWindow))
	if to < from {
		return []models.Event{}, nil
	}
	events, err := s.events.EventsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if len(events) > s.cfg.UpcomingLimit {
		events = events[:s.cfg.UpcomingLimit]
	}
	return events, nil
}
