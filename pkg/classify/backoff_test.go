package classify

import (
	"fmt"
	"testing"
	"time"
)

func deterministic(strategy BackoffStrategy, base, max time.Duration) RetryConfig {
	return RetryConfig{
		Strategy:          strategy,
		BaseDelay:         base,
		MaxDelay:          max,
		JitterFactor:      0,
		MaxRetries:        5,
		RespectRetryAfter: true,
	}
}

func TestComputeDelay_Exponential(t *testing.T) {
	cfg := deterministic(BackoffExponential, 100*time.Millisecond, time.Minute)
	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		1600 * time.Millisecond,
	}
	for attempt, expected := range want {
		got := ComputeDelay(cfg, attempt, 0)
		if got != expected {
			t.Errorf("attempt %d: delay = %v, want %v", attempt, got, expected)
		}
	}
}

func TestComputeDelay_ClampedToMax(t *testing.T) {
	cfg := deterministic(BackoffExponential, 100*time.Millisecond, 500*time.Millisecond)
	if got := ComputeDelay(cfg, 10, 0); got != 500*time.Millisecond {
		t.Errorf("delay = %v, want clamp at 500ms", got)
	}
}

func TestComputeDelay_Linear(t *testing.T) {
	cfg := deterministic(BackoffLinear, 100*time.Millisecond, time.Minute)
	for attempt := 0; attempt < 4; attempt++ {
		want := time.Duration(attempt+1) * 100 * time.Millisecond
		if got := ComputeDelay(cfg, attempt, 0); got != want {
			t.Errorf("attempt %d: delay = %v, want %v", attempt, got, want)
		}
	}
}

func TestComputeDelay_Fixed(t *testing.T) {
	cfg := deterministic(BackoffFixed, 250*time.Millisecond, time.Minute)
	for attempt := 0; attempt < 4; attempt++ {
		if got := ComputeDelay(cfg, attempt, 0); got != 250*time.Millisecond {
			t.Errorf("attempt %d: delay = %v, want 250ms", attempt, got)
		}
	}
}

func TestComputeDelay_RetryAfterPrecedence(t *testing.T) {
	cfg := deterministic(BackoffExponential, 100*time.Millisecond, time.Minute)

	if got := ComputeDelay(cfg, 0, 3*time.Second); got != 3*time.Second {
		t.Errorf("delay = %v, want server-provided 3s", got)
	}

	// Server delay above the cap is clamped.
	cfg.MaxDelay = time.Second
	if got := ComputeDelay(cfg, 0, 3*time.Second); got != time.Second {
		t.Errorf("delay = %v, want clamp at 1s", got)
	}

	// Ignored when disabled.
	cfg.RespectRetryAfter = false
	cfg.MaxDelay = time.Minute
	if got := ComputeDelay(cfg, 0, 3*time.Second); got != 100*time.Millisecond {
		t.Errorf("delay = %v, want computed 100ms when retry-after is disabled", got)
	}
}

func TestComputeDelay_JitterBounds(t *testing.T) {
	cfg := deterministic(BackoffFixed, time.Second, time.Minute)
	cfg.JitterFactor = 0.5

	for i := 0; i < 100; i++ {
		got := ComputeDelay(cfg, 0, 0)
		if got < 500*time.Millisecond || got > 1500*time.Millisecond {
			t.Fatalf("jittered delay %v outside [500ms, 1500ms]", got)
		}
	}
}

func TestRetryConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RetryConfig)
		valid  bool
	}{
		{"defaults", func(c *RetryConfig) {}, true},
		{"unknown strategy", func(c *RetryConfig) { c.Strategy = "fibonacci" }, false},
		{"negative base delay", func(c *RetryConfig) { c.BaseDelay = -time.Second }, false},
		{"jitter above one", func(c *RetryConfig) { c.JitterFactor = 1.5 }, false},
		{"negative retries", func(c *RetryConfig) { c.MaxRetries = -1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultRetryConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.valid && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected a configuration error")
			}
		})
	}
}

func ExampleComputeDelay() {
	cfg := RetryConfig{Strategy: BackoffExponential, BaseDelay: 100 * time.Millisecond, MaxDelay: time.Minute}
	fmt.Println(ComputeDelay(cfg, 3, 0))
	// Output: 800ms
}
