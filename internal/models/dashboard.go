package models

import "time"

// DashboardSummary aggregates platform stats for the dashboard pages.
type DashboardSummary struct {
	TotalRooms     int             `json:"total_rooms"`
	TotalEnrolled  int             `json:"total_enrolled"`
	TotalModules   int             `json:"total_modules"`
	Categories     []CategoryCount `json:"categories"`
	EventsToday    []Event         `json:"events_today"`
	UpcomingEvents []Event         `json:"upcoming_events"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

// SystemMetrics is a lightweight runtime snapshot shown on the admin dashboard.
type SystemMetrics struct {
	CacheHitRatio            float64          `json:"cache_hit_ratio"`
	CacheHits                uint64           `json:"cache_hits"`
	CacheMisses              uint64           `json:"cache_misses"`
	RequestsTotal            uint64           `json:"requests_total"`
	AverageRequestDurationMs float64          `json:"average_request_duration_ms"`
	StoreOperations          map[string]int64 `json:"store_operations"`
	Goroutines               int              `json:"goroutines"`
	GeneratedAt              time.Time        `json:"generated_at"`
}
