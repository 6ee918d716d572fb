package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestTracker(cfg Config) *Tracker {
	return NewTracker(cfg, nil, zerolog.Nop())
}

func TestNewTracker_Defaults(t *testing.T) {
	tracker := newTestTracker(Config{})

	if tracker.limiter.Burst() != 1 {
		t.Errorf("Burst = %d, want 1", tracker.limiter.Burst())
	}
	if _, ok := tracker.store.(*MemoryStore); !ok {
		t.Errorf("store = %T, want *MemoryStore", tracker.store)
	}

	cfg := DefaultConfig()
	if cfg.RequestsPerSecond <= 0 || cfg.Burst < 1 {
		t.Errorf("DefaultConfig() = %+v", cfg)
	}
}

func TestTracker_UpdateFromHeaders(t *testing.T) {
	tracker := newTestTracker(DefaultConfig())
	ctx := context.Background()

	h := http.Header{}
	h.Set(HeaderRemaining, "15")
	h.Set(HeaderReset, "60")
	if err := tracker.UpdateFromHeaders(ctx, h); err != nil {
		t.Fatalf("UpdateFromHeaders() error = %v", err)
	}

	state, err := tracker.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if state.Remaining != 15 {
		t.Errorf("Remaining = %d, want 15", state.Remaining)
	}

	// Responses without headers leave the state alone.
	if err := tracker.UpdateFromHeaders(ctx, http.Header{}); err != nil {
		t.Fatalf("UpdateFromHeaders() error = %v", err)
	}
	state, _ = tracker.GetState(ctx)
	if state.Remaining != 15 {
		t.Errorf("Remaining = %d after empty headers, want 15", state.Remaining)
	}

	bad := http.Header{}
	bad.Set(HeaderRemaining, "x")
	if err := tracker.UpdateFromHeaders(ctx, bad); err == nil {
		t.Error("expected parse error")
	}
}

func TestTracker_Wait_Unlimited(t *testing.T) {
	tracker := newTestTracker(Config{})

	start := time.Now()
	for range 100 {
		if err := tracker.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("unlimited tracker took %v", elapsed)
	}
}

func TestTracker_Wait_TokenBucket(t *testing.T) {
	tracker := newTestTracker(Config{RequestsPerSecond: 20, Burst: 1})
	ctx := context.Background()

	start := time.Now()
	for range 3 {
		if err := tracker.Wait(ctx); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}
	// First token is immediate; the next two cost 50ms each.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("Wait() elapsed = %v, want >= ~100ms", elapsed)
	}
}

func TestTracker_Wait_ContextCancelled(t *testing.T) {
	tracker := newTestTracker(Config{RequestsPerSecond: 0.1, Burst: 1})
	if err := tracker.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := tracker.Wait(ctx)
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("Wait() error = %v, want ErrRateLimited", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestTracker_Wait_HoldsUntilReset(t *testing.T) {
	tracker := newTestTracker(Config{})
	ctx := context.Background()

	_ = tracker.store.Save(ctx, State{
		Remaining:  0,
		ResetAt:    time.Now().Add(60 * time.Millisecond),
		LastUpdate: time.Now(),
	})

	start := time.Now()
	if err := tracker.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Wait() returned after %v, want to hold until reset", elapsed)
	}
}

func TestTracker_Wait_MaxWaitExceeded(t *testing.T) {
	tracker := newTestTracker(Config{MaxWait: 10 * time.Millisecond})
	ctx := context.Background()

	h := http.Header{}
	h.Set(HeaderRetryAfter, "30")
	if err := tracker.UpdateFromHeaders(ctx, h); err != nil {
		t.Fatalf("UpdateFromHeaders() error = %v", err)
	}

	start := time.Now()
	err := tracker.Wait(ctx)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("Wait() error = %v, want ErrRateLimited", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Wait() should fail fast when the reset exceeds MaxWait")
	}
}

func TestTracker_Wait_ExhaustedContextCancelled(t *testing.T) {
	tracker := newTestTracker(Config{})

	h := http.Header{}
	h.Set(HeaderRetryAfter, "30")
	_ = tracker.UpdateFromHeaders(context.Background(), h)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := tracker.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
}
