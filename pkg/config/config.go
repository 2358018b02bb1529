package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

type Config struct {
	Env           string
	Port          int
	APIPrefix     string
	StorageDriver string
	SeedMockData  bool

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Rooms     RoomsConfig
	Uploads   UploadsConfig
	Dashboard DashboardConfig
	Metrics   MetricsConfig
	UI        UIConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RoomsConfig tunes the room builder and explore listing.
type RoomsConfig struct {
	MaxModules       int
	PlaceholderImage string
	PageSize         int
	DraftTTL         time.Duration
}

// UploadsConfig controls room image storage.
type UploadsConfig struct {
	StorageDir       string
	SignedURLSecret  string
	SignedURLTTL     time.Duration
	MaxFileSizeBytes int64
	Workers          int
	Retries          int
}

// DashboardConfig governs dashboard exposure and cache tuning.
type DashboardConfig struct {
	Enabled        bool
	CacheTTL       time.Duration
	UpcomingLimit  int
	UpcomingWindow time.Duration
}

type MetricsConfig struct {
	Enabled bool
}

// UIConfig holds the process-wide defaults for interface preferences.
type UIConfig struct {
	DefaultTheme     string
	SidebarCollapsed bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.StorageDriver = normalizeDriver(v.GetString("STORAGE_DRIVER"))
	cfg.SeedMockData = v.GetBool("SEED_MOCK_DATA")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS") || cfg.StorageDriver == StorageRedis,
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		Prefix:   v.GetString("REDIS_PREFIX"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxModules := v.GetInt("ROOMS_MAX_MODULES")
	if maxModules <= 0 {
		maxModules = 20
	}
	cfg.Rooms = RoomsConfig{
		MaxModules:       maxModules,
		PlaceholderImage: v.GetString("ROOMS_PLACEHOLDER_IMAGE"),
		PageSize:         v.GetInt("ROOMS_PAGE_SIZE"),
		DraftTTL:         parseDuration(v.GetString("DRAFT_TTL"), 24*time.Hour),
	}

	maxUpload := v.GetInt64("UPLOADS_MAX_FILE_SIZE")
	if maxUpload <= 0 {
		maxUpload = 5 * 1024 * 1024
	}
	cfg.Uploads = UploadsConfig{
		StorageDir:       v.GetString("UPLOADS_STORAGE_DIR"),
		SignedURLSecret:  v.GetString("UPLOADS_SIGNED_URL_SECRET"),
		SignedURLTTL:     parseDuration(v.GetString("UPLOADS_SIGNED_URL_TTL"), 7*24*time.Hour),
		MaxFileSizeBytes: maxUpload,
		Workers:          v.GetInt("UPLOADS_WORKERS"),
		Retries:          v.GetInt("UPLOADS_RETRIES"),
	}

	cfg.Dashboard = DashboardConfig{
		Enabled:        v.GetBool("ENABLE_DASHBOARD"),
		CacheTTL:       parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), time.Minute),
		UpcomingLimit:  v.GetInt("DASHBOARD_UPCOMING_LIMIT"),
		UpcomingWindow: parseDuration(v.GetString("DASHBOARD_UPCOMING_WINDOW"), 7*24*time.Hour),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	cfg.UI = UIConfig{
		DefaultTheme:     strings.ToLower(v.GetString("UI_DEFAULT_THEME")),
		SidebarCollapsed: v.GetBool("UI_SIDEBAR_COLLAPSED"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("STORAGE_DRIVER", StorageMemory)
	v.SetDefault("SEED_MOCK_DATA", false)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "peerroom")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PREFIX", "peerroom")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ROOMS_MAX_MODULES", 20)
	v.SetDefault("ROOMS_PLACEHOLDER_IMAGE", "https://via.placeholder.com/150")
	v.SetDefault("ROOMS_PAGE_SIZE", 6)
	v.SetDefault("DRAFT_TTL", "24h")

	v.SetDefault("UPLOADS_STORAGE_DIR", "./uploads")
	v.SetDefault("UPLOADS_SIGNED_URL_SECRET", "dev_uploads_secret")
	v.SetDefault("UPLOADS_SIGNED_URL_TTL", "168h")
	v.SetDefault("UPLOADS_MAX_FILE_SIZE", 5*1024*1024)
	v.SetDefault("UPLOADS_WORKERS", 2)
	v.SetDefault("UPLOADS_RETRIES", 2)

	v.SetDefault("ENABLE_DASHBOARD", true)
	v.SetDefault("DASHBOARD_CACHE_TTL", "1m")
	v.SetDefault("DASHBOARD_UPCOMING_LIMIT", 5)
	v.SetDefault("DASHBOARD_UPCOMING_WINDOW", "168h")

	v.SetDefault("ENABLE_METRICS", true)

	v.SetDefault("UI_DEFAULT_THEME", "light")
	v.SetDefault("UI_SIDEBAR_COLLAPSED", false)
}

func normalizeDriver(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case StoragePostgres, "postgresql", "pg":
		return StoragePostgres
	case StorageRedis:
		return StorageRedis
	default:
		return StorageMemory
	}
}

// viper reports a missing explicit config file as a plain fs error.
func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
