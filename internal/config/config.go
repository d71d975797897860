// Package config provides configuration loading from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/oneiriq/cosmiq-graphql/internal/logging"
	"github.com/oneiriq/cosmiq-graphql/pkg/classify"
	"github.com/oneiriq/cosmiq-graphql/pkg/cosmos"
	"github.com/oneiriq/cosmiq-graphql/pkg/inference"
)

// Config holds all configuration for the CLI.
type Config struct {
	SampleSize     int                   // SAMPLE_SIZE, default 100
	SampleStrategy cosmos.SampleStrategy // SAMPLE_STRATEGY, default "top"

	RequiredThreshold  float64                      // REQUIRED_THRESHOLD, default 0.95
	ConflictResolution inference.ConflictResolution // CONFLICT_RESOLUTION, default "widen"
	IDPatterns         []string                     // ID_PATTERNS, comma-separated
	MaxNestingDepth    int                          // MAX_NESTING_DEPTH, default 10
	NestedTypeFallback inference.NestedTypeFallback // NESTED_TYPE_FALLBACK, default "JSON"
	NumberInference    inference.NumberInference    // NUMBER_INFERENCE, default "strict"
	NamingStrategy     inference.NamingStrategy     // NAMING_STRATEGY, default "hierarchical"

	RetryStrategy     classify.BackoffStrategy // RETRY_STRATEGY, default "exponential"
	RetryBaseDelay    time.Duration            // RETRY_BASE_DELAY_MS, default 100ms
	RetryMaxDelay     time.Duration            // RETRY_MAX_DELAY_MS, default 30000ms
	RetryJitter       float64                  // RETRY_JITTER, default 0.2
	RetryMax          int                      // RETRY_MAX, default 5
	RetryRUBudget     float64                  // RETRY_MAX_RU_BUDGET, default 0 (disabled)
	RespectRetryAfter bool                     // RETRY_RESPECT_RETRY_AFTER, default true

	CacheMaxEntries int           // CACHE_MAX_ENTRIES, default 64
	CacheTTL        time.Duration // CACHE_TTL_MS, default 300000ms (5m)
	CacheDisabled   bool          // CACHE_DISABLED, default false

	LogLevel      string // LOG_LEVEL, default "info"
	LogFormat     string // LOG_FORMAT, default "pretty"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 3
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		SampleSize:     getEnvInt("SAMPLE_SIZE", 100),
		SampleStrategy: cosmos.SampleStrategy(getEnvString("SAMPLE_STRATEGY", string(cosmos.StrategyTop))),

		RequiredThreshold:  getEnvFloat("REQUIRED_THRESHOLD", 0.95),
		ConflictResolution: inference.ConflictResolution(getEnvString("CONFLICT_RESOLUTION", string(inference.ConflictWiden))),
		IDPatterns:         getEnvList("ID_PATTERNS", inference.DefaultIDPatterns()),
		MaxNestingDepth:    getEnvInt("MAX_NESTING_DEPTH", 10),
		NestedTypeFallback: inference.NestedTypeFallback(getEnvString("NESTED_TYPE_FALLBACK", string(inference.FallbackJSON))),
		NumberInference:    inference.NumberInference(getEnvString("NUMBER_INFERENCE", string(inference.NumberStrict))),
		NamingStrategy:     inference.NamingStrategy(getEnvString("NAMING_STRATEGY", string(inference.NamingHierarchical))),

		RetryStrategy:     classify.BackoffStrategy(getEnvString("RETRY_STRATEGY", string(classify.BackoffExponential))),
		RetryBaseDelay:    getEnvDurationMs("RETRY_BASE_DELAY_MS", 100),
		RetryMaxDelay:     getEnvDurationMs("RETRY_MAX_DELAY_MS", 30000),
		RetryJitter:       getEnvFloat("RETRY_JITTER", 0.2),
		RetryMax:          getEnvInt("RETRY_MAX", 5),
		RetryRUBudget:     getEnvFloat("RETRY_MAX_RU_BUDGET", 0),
		RespectRetryAfter: getEnvBool("RETRY_RESPECT_RETRY_AFTER", true),

		CacheMaxEntries: getEnvInt("CACHE_MAX_ENTRIES", 64),
		CacheTTL:        getEnvDurationMs("CACHE_TTL_MS", 300000),
		CacheDisabled:   getEnvBool("CACHE_DISABLED", false),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFormat:     getEnvString("LOG_FORMAT", "pretty"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

// InferenceConfig maps the loaded values onto the engine config.
func (c *Config) InferenceConfig() *inference.Config {
	cfg := inference.DefaultConfig()
	cfg.SampleSize = c.SampleSize
	cfg.RequiredThreshold = c.RequiredThreshold
	cfg.ConflictResolution = c.ConflictResolution
	cfg.IDPatterns = c.IDPatterns
	cfg.MaxNestingDepth = c.MaxNestingDepth
	cfg.NestedTypeFallback = c.NestedTypeFallback
	cfg.NumberInference = c.NumberInference
	cfg.NamingStrategy = c.NamingStrategy
	return cfg
}

// RetryConfig maps the loaded values onto the sampler's retry config.
func (c *Config) RetryConfig() classify.RetryConfig {
	cfg := classify.DefaultRetryConfig()
	cfg.Strategy = c.RetryStrategy
	cfg.BaseDelay = c.RetryBaseDelay
	cfg.MaxDelay = c.RetryMaxDelay
	cfg.JitterFactor = c.RetryJitter
	cfg.MaxRetries = c.RetryMax
	cfg.MaxRetryRUBudget = c.RetryRUBudget
	cfg.RespectRetryAfter = c.RespectRetryAfter
	return cfg
}

// LoggingConfig maps the loaded values onto the logging setup.
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		FilePath:   c.LogFile,
		MaxSizeMB:  c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
		MaxAgeDays: c.LogMaxAgeDays,
		Compress:   c.LogCompress,
	}
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvList(key string, defaultVal []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	ms := getEnvInt(key, defaultMs)
	return time.Duration(ms) * time.Millisecond
}
