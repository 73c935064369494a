package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort      = 8080
	DefaultServerMode      = "release"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultMaxBodySize     = 10 << 20 // 10 MiB, prescription images arrive base64-encoded
	DefaultShutdownTimeout = 10 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisTTL       = 24 * time.Hour
	DefaultRedisKeyPrefix = "rxmed:"

	DefaultTerminologyBaseURL = "https://rxnav.nlm.nih.gov/REST"
	DefaultTerminologyTimeout = 10 * time.Second
	DefaultRetryCount         = 1
	DefaultMaxResults         = 5
	DefaultMaxResultsCeiling  = 10

	DefaultTaggerTimeout  = 15 * time.Second
	DefaultTaggerMinScore = 0.5

	DefaultOCRTimeout            = 30 * time.Second
	DefaultOCRPrimaryThreshold   = 0.5
	DefaultOCRSecondaryThreshold = 0.3
	DefaultOCRBasicConfidenceCap = 0.2
	DefaultOCRMaxImageSize       = 8 << 20

	DefaultMaxTextLength = 10000
	DefaultStageTimeout  = 20 * time.Second

	DefaultMetricsNamespace = "rxmed"
)

// ApplyDefaults fills zero-value fields in cfg with the service defaults.
// Call after unmarshalling and before Validate so optional-but-defaulted
// fields are never seen as missing.  Explicitly set values always win.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ───────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBodySize
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// ── Log ──────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Redis ────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── Terminology ──────────────────────────────────────────────────────────
	if cfg.Terminology.BaseURL == "" {
		cfg.Terminology.BaseURL = DefaultTerminologyBaseURL
	}
	if cfg.Terminology.Timeout == 0 {
		cfg.Terminology.Timeout = DefaultTerminologyTimeout
	}
	if cfg.Terminology.RetryCount == 0 {
		cfg.Terminology.RetryCount = DefaultRetryCount
	}
	if cfg.Terminology.MaxResults == 0 {
		cfg.Terminology.MaxResults = DefaultMaxResults
	}
	if cfg.Terminology.MaxResultsCeiling == 0 {
		cfg.Terminology.MaxResultsCeiling = DefaultMaxResultsCeiling
	}

	// ── Tagger ───────────────────────────────────────────────────────────────
	if cfg.Tagger.Timeout == 0 {
		cfg.Tagger.Timeout = DefaultTaggerTimeout
	}
	if cfg.Tagger.MinScore == 0 {
		cfg.Tagger.MinScore = DefaultTaggerMinScore
	}

	// ── OCR ──────────────────────────────────────────────────────────────────
	if cfg.OCR.Timeout == 0 {
		cfg.OCR.Timeout = DefaultOCRTimeout
	}
	if cfg.OCR.PrimaryThreshold == 0 {
		cfg.OCR.PrimaryThreshold = DefaultOCRPrimaryThreshold
	}
	if cfg.OCR.SecondaryThreshold == 0 {
		cfg.OCR.SecondaryThreshold = DefaultOCRSecondaryThreshold
	}
	if cfg.OCR.BasicConfidenceCap == 0 {
		cfg.OCR.BasicConfidenceCap = DefaultOCRBasicConfidenceCap
	}
	if cfg.OCR.MaxImageSizeBytes == 0 {
		cfg.OCR.MaxImageSizeBytes = DefaultOCRMaxImageSize
	}

	// ── Analysis ─────────────────────────────────────────────────────────────
	if cfg.Analysis.MaxTextLength == 0 {
		cfg.Analysis.MaxTextLength = DefaultMaxTextLength
	}
	if cfg.Analysis.StageTimeout == 0 {
		cfg.Analysis.StageTimeout = DefaultStageTimeout
	}

	// ── Metrics ──────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}
