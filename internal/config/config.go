// Package config provides configuration management for the analysis service.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingListenAddr    = errors.New("server.listen_addr is required")
	ErrMissingUploadDir     = errors.New("server.upload_dir is required")
	ErrInvalidMaxUpload     = errors.New("server.max_upload_mb must be at least 1")
	ErrMissingRedisAddr     = errors.New("redis.addr is required when redis is enabled")
	ErrInvalidReportTTL     = errors.New("redis.report_ttl_minutes must be at least 1")
	ErrInvalidLogLevel      = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat     = errors.New("logging.format must be 'text' or 'json'")
	ErrInvalidTiers         = errors.New("analysis.high_value_threshold must exceed analysis.mid_value_threshold")
	ErrInvalidSeasonalShare = errors.New("analysis.seasonal_share_pct must be between 0 and 100")
	ErrInvalidRegularGap    = errors.New("analysis.regular_gap_days must be at least 1")
	ErrInvalidReactivation  = errors.New("analysis.reactivation_window_days must be at least 1")
)

// Config represents the complete service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	ListenAddr  string `yaml:"listen_addr"`
	UploadDir   string `yaml:"upload_dir"`
	MaxUploadMb int    `yaml:"max_upload_mb"`
}

// RedisConfig controls the report cache. When disabled the server keeps
// reports in process memory.
type RedisConfig struct {
	Enabled          bool   `yaml:"enabled"`
	Addr             string `yaml:"addr"`
	ReportTTLMinutes int    `yaml:"report_ttl_minutes"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AnalysisConfig holds the insight-generation thresholds.
type AnalysisConfig struct {
	HighValueThreshold     float64 `yaml:"high_value_threshold"`
	MidValueThreshold      float64 `yaml:"mid_value_threshold"`
	SeasonalSharePct       float64 `yaml:"seasonal_share_pct"`
	RegularGapDays         float64 `yaml:"regular_gap_days"`
	MinOrdersForPattern    int     `yaml:"min_orders_for_pattern"`
	MinCustomersForProduct int     `yaml:"min_customers_for_product"`
	ReactivationWindowDays int     `yaml:"reactivation_window_days"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:  ":8080",
			UploadDir:   "uploads",
			MaxUploadMb: 50,
		},
		Redis: RedisConfig{
			Enabled:          false,
			Addr:             "localhost:6379",
			ReportTTLMinutes: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Analysis: AnalysisConfig{
			HighValueThreshold:     1000,
			MidValueThreshold:      500,
			SeasonalSharePct:       30,
			RegularGapDays:         45,
			MinOrdersForPattern:    3,
			MinCustomersForProduct: 3,
			ReactivationWindowDays: 180,
		},
	}
}

// Load reads configuration from a YAML file, layered over defaults. A .env
// file in the working directory is loaded first so environment overrides
// (REDIS_ADDR, LISTEN_ADDR) are available.
func Load(filepath string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if filepath != "" {
		data, err := os.ReadFile(filepath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		cfg.Server.ListenAddr = addr
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
		cfg.Redis.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return ErrMissingListenAddr
	}

	if c.Server.UploadDir == "" {
		return ErrMissingUploadDir
	}

	if c.Server.MaxUploadMb < 1 {
		return ErrInvalidMaxUpload
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return ErrMissingRedisAddr
	}

	if c.Redis.ReportTTLMinutes < 1 {
		return ErrInvalidReportTTL
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	if c.Analysis.HighValueThreshold <= c.Analysis.MidValueThreshold {
		return ErrInvalidTiers
	}

	if c.Analysis.SeasonalSharePct <= 0 || c.Analysis.SeasonalSharePct > 100 {
		return ErrInvalidSeasonalShare
	}

	if c.Analysis.RegularGapDays < 1 {
		return ErrInvalidRegularGap
	}

	if c.Analysis.ReactivationWindowDays < 1 {
		return ErrInvalidReactivation
	}

	return nil
}
