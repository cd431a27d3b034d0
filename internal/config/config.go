// Package config provides configuration management for the Parlayscope application.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App           AppConfig           `mapstructure:"app" validate:"required"`
	Database      DatabaseConfig      `mapstructure:"database" validate:"required"`
	VisionService VisionServiceConfig `mapstructure:"vision_service" validate:"required"`
	Simulator     SimulatorConfig     `mapstructure:"simulator" validate:"required"`
	Extraction    ExtractionConfig    `mapstructure:"extraction" validate:"required"`
	Insights      InsightsConfig      `mapstructure:"insights" validate:"required"`
	Server        ServerConfig        `mapstructure:"server" validate:"required"`
	Metrics       MetricsConfig       `mapstructure:"metrics" validate:"required"`
	Features      FeaturesConfig      `mapstructure:"features" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// VisionServiceConfig represents vision/analytics backend configuration
type VisionServiceConfig struct {
	BaseURL               string  `mapstructure:"base_url" validate:"required,url"`
	APIKey                string  `mapstructure:"api_key"`
	RequestTimeoutSeconds int     `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	RetryAttempts         int     `mapstructure:"retry_attempts" validate:"gte=0"`
	RateLimitPerSecond    float64 `mapstructure:"rate_limit_per_second" validate:"gte=0"`
	CacheTTLSeconds       int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
}

// SimulatorConfig represents parlay simulation constraints
type SimulatorConfig struct {
	MinLegs  int     `mapstructure:"min_legs" validate:"required,gte=1"`
	MaxLegs  int     `mapstructure:"max_legs" validate:"required,gt=0"`
	MaxStake float64 `mapstructure:"max_stake" validate:"required,gt=0"`
}

// ExtractionConfig represents frame extraction settings
type ExtractionConfig struct {
	SampleIntervalSeconds float64 `mapstructure:"sample_interval_seconds" validate:"required,gt=0"`
	MaxFrames             int     `mapstructure:"max_frames" validate:"required,gt=0"`
	MaxVideoMB            int     `mapstructure:"max_video_mb" validate:"required,gt=0"`
	HashDistance          int     `mapstructure:"hash_distance" validate:"gte=0"`
	FFmpegPath            string  `mapstructure:"ffmpeg_path"`
	FFprobePath           string  `mapstructure:"ffprobe_path"`
}

// InsightsConfig represents scheduled analytics refresh configuration
type InsightsConfig struct {
	SharpMoneyCron   string `mapstructure:"sharp_money_cron" validate:"required"`
	HitRateCron      string `mapstructure:"hit_rate_cron" validate:"required"`
	FreshnessMinutes int    `mapstructure:"freshness_minutes" validate:"required,gt=0"`
}

// ServerConfig represents HTTP API server configuration
type ServerConfig struct {
	Port            int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	ShutdownSeconds int      `mapstructure:"shutdown_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// FeaturesConfig represents feature flags
type FeaturesConfig struct {
	VideoUploadsEnabled     bool `mapstructure:"video_uploads_enabled"`
	InsightRefreshEnabled   bool `mapstructure:"insight_refresh_enabled"`
	HedgeSuggestionsEnabled bool `mapstructure:"hedge_suggestions_enabled"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// MaxVideoBytes returns the upload size cap in bytes
func (c *Config) MaxVideoBytes() int64 {
	return int64(c.Extraction.MaxVideoMB) << 20
}
