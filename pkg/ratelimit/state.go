// Package ratelimit gates outbound catalog requests with a local token
// bucket and honors the upstream's rate limit headers (X-RateLimit-*,
// Retry-After) by holding requests until the advertised reset.
package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Header names read from upstream responses.
const (
	HeaderLimit      = "X-RateLimit-Limit"
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderReset      = "X-RateLimit-Reset"
	HeaderRetryAfter = "Retry-After"
)

// resetEpochThreshold separates X-RateLimit-Reset values given as a unix
// timestamp from values given in seconds.
const resetEpochThreshold = 1_000_000_000

// State is the upstream budget as last reported.
type State struct {
	// Limit is the window size, 0 when not reported.
	Limit int `json:"limit"`

	// Remaining is the number of requests left in the window.
	Remaining int `json:"remaining"`

	// ResetAt is when the window resets.
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when the state was recorded.
	LastUpdate time.Time `json:"last_update"`
}

// Exhausted reports whether the upstream has no budget left and the reset
// is still ahead.
func (s State) Exhausted() bool {
	return s.Remaining <= 0 && !s.LastUpdate.IsZero() && time.Now().Before(s.ResetAt)
}

// TimeUntilReset returns the duration until the window resets, or 0.
func (s State) TimeUntilReset() time.Duration {
	return max(time.Until(s.ResetAt), 0)
}

// IsStale reports whether the state is older than maxAge.
func (s State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// ParseHeaders extracts the rate limit state from response headers.
// ok is false when the response carries no rate limit information.
// A Retry-After header marks the budget as exhausted until the given time.
func ParseHeaders(h http.Header, now time.Time) (state State, ok bool, err error) {
	state.LastUpdate = now

	if ra := h.Get(HeaderRetryAfter); ra != "" {
		resetAt, err := parseRetryAfter(ra, now)
		if err != nil {
			return State{}, false, err
		}
		state.ResetAt = resetAt
		state.Remaining = 0
		if limit, err := strconv.Atoi(h.Get(HeaderLimit)); err == nil {
			state.Limit = limit
		}
		return state, true, nil
	}

	remain := h.Get(HeaderRemaining)
	if remain == "" {
		return State{}, false, nil
	}

	state.Remaining, err = strconv.Atoi(remain)
	if err != nil {
		return State{}, false, fmt.Errorf("parse %s header: %w", HeaderRemaining, err)
	}

	if limit := h.Get(HeaderLimit); limit != "" {
		if state.Limit, err = strconv.Atoi(limit); err != nil {
			return State{}, false, fmt.Errorf("parse %s header: %w", HeaderLimit, err)
		}
	}

	reset := h.Get(HeaderReset)
	if reset == "" {
		state.ResetAt = now
		return state, true, nil
	}
	secs, err := strconv.ParseInt(reset, 10, 64)
	if err != nil {
		return State{}, false, fmt.Errorf("parse %s header: %w", HeaderReset, err)
	}
	if secs >= resetEpochThreshold {
		state.ResetAt = time.Unix(secs, 0)
	} else {
		state.ResetAt = now.Add(time.Duration(secs) * time.Second)
	}
	return state, true, nil
}

func parseRetryAfter(v string, now time.Time) (time.Time, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return now.Add(time.Duration(secs) * time.Second), nil
	}
	t, err := http.ParseTime(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s header: %w", HeaderRetryAfter, err)
	}
	return t, nil
}
