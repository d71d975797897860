package classify

import (
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy selects the delay growth curve between retry attempts.
type BackoffStrategy string

const (
	BackoffExponential BackoffStrategy = "exponential"
	BackoffLinear      BackoffStrategy = "linear"
	BackoffFixed       BackoffStrategy = "fixed"
)

// RetryConfig controls the sampler's retry loop.
type RetryConfig struct {
	Strategy          BackoffStrategy
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	JitterFactor      float64 // in [0,1]; 0 makes ComputeDelay deterministic
	MaxRetries        int
	MaxRetryRUBudget  float64 // cumulative charge ceiling across failed attempts; 0 disables
	RespectRetryAfter bool

	// ShouldRetry overrides the classified error's retryable flag when set.
	ShouldRetry func(err *ClassifiedError, attempt int) bool
	// OnRetry observes each scheduled retry before the wait.
	OnRetry func(err *ClassifiedError, attempt int, delay time.Duration)
}

// DefaultRetryConfig provides sensible defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Strategy:          BackoffExponential,
		BaseDelay:         100 * time.Millisecond,
		MaxDelay:          30 * time.Second,
		JitterFactor:      0.2,
		MaxRetries:        5,
		RespectRetryAfter: true,
	}
}

// Validate checks the config for values the retry loop cannot work with.
func (c RetryConfig) Validate() error {
	switch c.Strategy {
	case BackoffExponential, BackoffLinear, BackoffFixed:
	default:
		return NewConfiguration("retry", "unknown backoff strategy %q", c.Strategy)
	}
	if c.BaseDelay < 0 || c.MaxDelay < 0 {
		return NewConfiguration("retry", "delays must be non-negative")
	}
	if c.JitterFactor < 0 || c.JitterFactor > 1 {
		return NewConfiguration("retry", "jitter factor must be in [0,1], got %v", c.JitterFactor)
	}
	if c.MaxRetries < 0 {
		return NewConfiguration("retry", "max retries must be non-negative")
	}
	return nil
}

// ComputeDelay returns the wait before retry number attempt (0-based).
// A positive server-provided retryAfter takes precedence when
// RespectRetryAfter is set, clamped to MaxDelay. Otherwise the configured
// strategy applies, clamped, then jittered by delay*jitter*U(-1,1) and
// floored at zero. Truncated to whole milliseconds.
func ComputeDelay(cfg RetryConfig, attempt int, retryAfter time.Duration) time.Duration {
	if cfg.RespectRetryAfter && retryAfter > 0 {
		if cfg.MaxDelay > 0 && retryAfter > cfg.MaxDelay {
			return cfg.MaxDelay
		}
		return retryAfter
	}

	base := float64(cfg.BaseDelay)
	var delay float64
	switch cfg.Strategy {
	case BackoffLinear:
		delay = base * float64(attempt+1)
	case BackoffFixed:
		delay = base
	default:
		delay = base * math.Pow(2, float64(attempt))
	}

	if cfg.MaxDelay > 0 && delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}

	if cfg.JitterFactor > 0 {
		delay += delay * cfg.JitterFactor * (rand.Float64()*2 - 1)
		if delay < 0 {
			delay = 0
		}
	}

	return time.Duration(delay).Truncate(time.Millisecond)
}
