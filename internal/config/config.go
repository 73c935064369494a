// Package config defines all configuration structures for the
// RxMed-Intelligence service.  No I/O or parsing logic lives here, only plain
// data types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"`
}

// RedisConfig holds Redis connection parameters for the terminology cache.
type RedisConfig struct {
	// Enabled controls whether lookups go through Redis at all.  The
	// pipeline works without a cache; every lookup then hits the
	// terminology service directly.
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// TerminologyConfig holds RxNorm terminology-service parameters.
type TerminologyConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RetryCount        int           `mapstructure:"retry_count"`
	MaxResults        int           `mapstructure:"max_results"`
	MaxResultsCeiling int           `mapstructure:"max_results_ceiling"`
}

// TaggerConfig holds the token-classification model endpoint parameters.
type TaggerConfig struct {
	// Enabled switches the model extraction path on.  When false the
	// coordinator uses pattern extraction exclusively.
	Enabled  bool          `mapstructure:"enabled"`
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
	MinScore float64       `mapstructure:"min_score"`
}

// OCRConfig holds the OCR provider-chain parameters.
type OCRConfig struct {
	PrimaryEndpoint    string        `mapstructure:"primary_endpoint"`
	SecondaryEndpoint  string        `mapstructure:"secondary_endpoint"`
	Timeout            time.Duration `mapstructure:"timeout"`
	PrimaryThreshold   float64       `mapstructure:"primary_threshold"`
	SecondaryThreshold float64       `mapstructure:"secondary_threshold"`
	BasicConfidenceCap float64       `mapstructure:"basic_confidence_cap"`
	MaxImageSizeBytes  int64         `mapstructure:"max_image_size_bytes"`
}

// AnalysisConfig holds pipeline-wide analysis parameters.
type AnalysisConfig struct {
	MaxTextLength int           `mapstructure:"max_text_length"`
	StageTimeout  time.Duration `mapstructure:"stage_timeout"`
}

// MetricsConfig holds Prometheus collector parameters.
type MetricsConfig struct {
	Namespace            string `mapstructure:"namespace"`
	Subsystem            string `mapstructure:"subsystem"`
	EnableProcessMetrics bool   `mapstructure:"enable_process_metrics"`
	EnableGoMetrics      bool   `mapstructure:"enable_go_metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.  Every component reads its
// settings from the relevant sub-struct.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Terminology TerminologyConfig `mapstructure:"terminology"`
	Tagger      TaggerConfig      `mapstructure:"tagger"`
	OCR         OCRConfig         `mapstructure:"ocr"`
	Analysis    AnalysisConfig    `mapstructure:"analysis"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of a fully-populated Config.  It
// returns the first error encountered; callers should treat any error as
// fatal and refuse to start.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required when redis.enabled is true")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
		}
	}

	// Terminology
	if c.Terminology.BaseURL == "" {
		return fmt.Errorf("config: terminology.base_url is required")
	}
	if c.Terminology.MaxResults < 1 {
		return fmt.Errorf("config: terminology.max_results must be >= 1, got %d", c.Terminology.MaxResults)
	}
	if c.Terminology.MaxResultsCeiling < c.Terminology.MaxResults {
		return fmt.Errorf("config: terminology.max_results_ceiling %d is below max_results %d",
			c.Terminology.MaxResultsCeiling, c.Terminology.MaxResults)
	}

	// Tagger
	if c.Tagger.Enabled && c.Tagger.Endpoint == "" {
		return fmt.Errorf("config: tagger.endpoint is required when tagger.enabled is true")
	}
	if c.Tagger.MinScore < 0 || c.Tagger.MinScore > 1 {
		return fmt.Errorf("config: tagger.min_score %v is out of range [0, 1]", c.Tagger.MinScore)
	}

	// OCR
	if c.OCR.PrimaryThreshold < c.OCR.SecondaryThreshold {
		return fmt.Errorf("config: ocr.primary_threshold %v is below ocr.secondary_threshold %v",
			c.OCR.PrimaryThreshold, c.OCR.SecondaryThreshold)
	}

	// Analysis
	if c.Analysis.MaxTextLength < 1 {
		return fmt.Errorf("config: analysis.max_text_length must be >= 1, got %d", c.Analysis.MaxTextLength)
	}

	// Metrics
	if c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required")
	}

	return nil
}
