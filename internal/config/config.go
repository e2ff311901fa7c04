package config

import (
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication required (default)
	AuthModeLocal AuthMode = "local" // Local user database with sessions
)

type (
	Config struct {
		HTTP
		Global
		Database
		Geocoding
		Scraper
		Map
		GeocodeBackfill
		Tasks
		Auth
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Geocoding struct {
		SIIBaseURL       string // "auto-geocode by rol" service
		NominatimBaseURL string // comuna-level fallback geocoder
		UserAgent        string
		Timeout          time.Duration
	}
	Scraper struct {
		Enabled bool   // administrative policy flag for the scraping strategy
		BaseURL string // property-registry portal
	}
	Map struct {
		CenterLat   float64
		CenterLng   float64
		DefaultZoom int
		MaxPoints   int // hard cap on map-data responses
	}
	GeocodeBackfill struct {
		Enabled   bool
		Schedule  string // Cron format: "0 * * * *" = hourly
		BatchSize int
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Auth struct {
		Mode            AuthMode
		SessionSecret   string
		SessionLifetime time.Duration
		TokenExpiry     time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8288)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Geocoding defaults
	v.SetDefault("sii_base_url", DefaultSIIBaseURL)
	v.SetDefault("nominatim_base_url", DefaultNominatimBaseURL)
	v.SetDefault("geocoding_user_agent", DefaultGeocodingUserAgent)
	v.SetDefault("geocoding_timeout", "10s")
	v.SetDefault("scraper_enabled", false)
	v.SetDefault("scraper_base_url", DefaultScraperBaseURL)

	// Map defaults (Santiago)
	v.SetDefault("map_center_lat", DefaultMapCenterLat)
	v.SetDefault("map_center_lng", DefaultMapCenterLng)
	v.SetDefault("map_default_zoom", DefaultMapZoom)
	v.SetDefault("map_max_points", 5000)

	// Geocode backfill defaults
	v.SetDefault("geocode_backfill_enabled", false)
	v.SetDefault("geocode_backfill_schedule", "0 * * * *") // Hourly at :00
	v.SetDefault("geocode_backfill_batch_size", 50)

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_session_secret", "")      // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h") // 24 hours
	v.SetDefault("auth_token_expiry", "720h")    // 30 days
	v.SetDefault("auth_bcrypt_cost", 12)         // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)    // HTTPS-only cookies
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_lockout_duration", "30m")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Geocoding: Geocoding{
			SIIBaseURL:       v.GetString("SII_BASE_URL"),
			NominatimBaseURL: v.GetString("NOMINATIM_BASE_URL"),
			UserAgent:        v.GetString("GEOCODING_USER_AGENT"),
			Timeout:          v.GetDuration("GEOCODING_TIMEOUT"),
		},
		Scraper: Scraper{
			Enabled: v.GetBool("SCRAPER_ENABLED"),
			BaseURL: v.GetString("SCRAPER_BASE_URL"),
		},
		Map: Map{
			CenterLat:   v.GetFloat64("MAP_CENTER_LAT"),
			CenterLng:   v.GetFloat64("MAP_CENTER_LNG"),
			DefaultZoom: v.GetInt("MAP_DEFAULT_ZOOM"),
			MaxPoints:   v.GetInt("MAP_MAX_POINTS"),
		},
		GeocodeBackfill: GeocodeBackfill{
			Enabled:   v.GetBool("GEOCODE_BACKFILL_ENABLED"),
			Schedule:  v.GetString("GEOCODE_BACKFILL_SCHEDULE"),
			BatchSize: v.GetInt("GEOCODE_BACKFILL_BATCH_SIZE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Auth: Auth{
			Mode:             AuthMode(v.GetString("AUTH_MODE")),
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			TokenExpiry:      v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
	}
}
