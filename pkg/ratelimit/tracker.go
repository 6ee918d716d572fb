package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when a request cannot be sent because the
// upstream budget is exhausted.
var ErrRateLimited = errors.New("rate limited")

const minStateTTL = time.Minute

// Prometheus metrics for rate limiting.
var (
	remainingGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_ratelimit_remaining",
		Help: "Requests remaining in the upstream rate limit window",
	})

	waitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_ratelimit_waits_total",
		Help: "Total number of requests delayed by the local token bucket",
	})

	blocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_ratelimit_blocks_total",
		Help: "Total number of requests held or refused while the upstream budget was exhausted",
	})
)

// Config controls the tracker.
type Config struct {
	// RequestsPerSecond is the local token bucket rate; <= 0 disables it.
	RequestsPerSecond float64

	// Burst is the bucket size; values < 1 mean 1.
	Burst int

	// MaxWait caps how long a request waits for an upstream reset before
	// failing with ErrRateLimited; 0 waits until the reset.
	MaxWait time.Duration
}

// DefaultConfig returns a conservative configuration.
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 10,
		Burst:             5,
	}
}

// Tracker gates requests.
type Tracker struct {
	limiter *rate.Limiter
	store   Store
	maxWait time.Duration
	logger  zerolog.Logger
}

// NewTracker creates a tracker. A nil store keeps state in memory.
func NewTracker(cfg Config, store Store, logger zerolog.Logger) *Tracker {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if store == nil {
		store = &MemoryStore{}
	}
	return &Tracker{
		limiter: rate.NewLimiter(limit, max(cfg.Burst, 1)),
		store:   store,
		maxWait: cfg.MaxWait,
		logger:  logger,
	}
}

// GetState returns the last recorded upstream state.
func (t *Tracker) GetState(ctx context.Context) (State, error) {
	return t.store.Load(ctx)
}

// Wait blocks until a request may be sent. It holds the request while the
// upstream budget is exhausted and then takes a token from the local
// bucket. It fails with ErrRateLimited if the hold would exceed MaxWait or
// ctx ends first.
func (t *Tracker) Wait(ctx context.Context) error {
	state, err := t.store.Load(ctx)
	if err != nil {
		// State is advisory; the token bucket still applies.
		t.logger.Warn().Err(err).Msg("Failed to load rate limit state")
	} else if state.Exhausted() {
		if err := t.holdUntilReset(ctx, state); err != nil {
			return err
		}
	}

	r := t.limiter.Reserve()
	delay := r.Delay()
	if delay == 0 {
		return nil
	}
	waitsTotal.Inc()
	t.logger.Debug().Dur("delay", delay).Msg("Throttling request")
	if err := sleep(ctx, delay); err != nil {
		r.Cancel()
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	return nil
}

func (t *Tracker) holdUntilReset(ctx context.Context, state State) error {
	wait := state.TimeUntilReset()
	blocksTotal.Inc()

	if t.maxWait > 0 && wait > t.maxWait {
		t.logger.Error().
			Dur("wait_duration", wait).
			Time("reset_at", state.ResetAt).
			Msg("Upstream rate limit exhausted - refusing request")
		return fmt.Errorf("%w: reset in %s", ErrRateLimited, wait.Round(time.Second))
	}

	t.logger.Warn().
		Dur("wait_duration", wait).
		Msg("Upstream rate limit exhausted - holding request until reset")
	if err := sleep(ctx, wait); err != nil {
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	return nil
}

// UpdateFromHeaders records the upstream state carried by h, if any.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, h http.Header) error {
	state, ok, err := ParseHeaders(h, time.Now())
	if err != nil || !ok {
		return err
	}

	if err := t.store.Save(ctx, state); err != nil {
		return err
	}
	remainingGauge.Set(float64(state.Remaining))

	if state.Exhausted() {
		t.logger.Warn().
			Int("remaining", state.Remaining).
			Time("reset_at", state.ResetAt).
			Msg("Upstream rate limit exhausted")
	} else {
		t.logger.Debug().
			Int("remaining", state.Remaining).
			Int("limit", state.Limit).
			Msg("Rate limit state updated")
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
