package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()

	if cfg.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0 (retries are opt-in)", cfg.MaxRetries)
	}
	if cfg.BackoffMultiplier != 2.0 {
		t.Errorf("BackoffMultiplier = %v, want 2.0", cfg.BackoffMultiplier)
	}
}

func TestBackoffFor(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        time.Second,
		BackoffMultiplier: 2,
	}

	tests := []struct {
		name  string
		class ErrorClass
		retry int
		want  time.Duration
	}{
		{name: "server first retry", class: ErrorClassServer, retry: 0, want: 100 * time.Millisecond},
		{name: "server second retry", class: ErrorClassServer, retry: 1, want: 200 * time.Millisecond},
		{name: "server third retry", class: ErrorClassServer, retry: 2, want: 400 * time.Millisecond},
		{name: "network scaled", class: ErrorClassNetwork, retry: 0, want: 200 * time.Millisecond},
		{name: "rate limit scaled", class: ErrorClassRateLimit, retry: 0, want: 400 * time.Millisecond},
		{name: "capped", class: ErrorClassRateLimit, retry: 3, want: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := backoffFor(cfg, tt.class, tt.retry); got != tt.want {
				t.Errorf("backoffFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJitter(t *testing.T) {
	base := time.Second
	for range 100 {
		got := jitter(base)
		if got < 800*time.Millisecond || got > 1200*time.Millisecond {
			t.Fatalf("jitter(%v) = %v, outside ±20%%", base, got)
		}
	}
}

func TestWaitBackoff_ContextCancelled(t *testing.T) {
	c := &Client{
		retry:  RetryConfig{InitialBackoff: time.Minute},
		logger: zerolog.Nop(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := c.waitBackoff(ctx, ErrorClassServer, 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("waitBackoff() error = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("waitBackoff() should return promptly on cancellation")
	}
}
