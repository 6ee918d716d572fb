package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisKeyState holds the shared upstream budget.
const RedisKeyState = "catalog:rate_limit:state"

// Store persists the upstream state. Processes sharing a Redis store share
// one view of the upstream budget.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, s State) error
}

// MemoryStore keeps the state in process.
type MemoryStore struct {
	mu    sync.Mutex
	state State
}

// Load returns the stored state.
func (m *MemoryStore) Load(context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, nil
}

// Save replaces the stored state.
func (m *MemoryStore) Save(_ context.Context, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
	return nil
}

// RedisStore keeps the state in Redis under RedisKeyState.
type RedisStore struct {
	redis redis.Cmdable
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{redis: client}
}

// Load returns the stored state, or the zero State when none is stored.
func (r *RedisStore) Load(ctx context.Context) (State, error) {
	data, err := r.redis.Get(ctx, RedisKeyState).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("get rate limit state: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("decode rate limit state: %w", err)
	}
	return s, nil
}

// Save stores s until its reset time passes.
func (r *RedisStore) Save(ctx context.Context, s State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode rate limit state: %w", err)
	}
	// Keep the state at least a minute so a zero-length window is still visible.
	ttl := max(s.TimeUntilReset(), minStateTTL)
	if err := r.redis.Set(ctx, RedisKeyState, data, ttl).Err(); err != nil {
		return fmt.Errorf("store rate limit state in redis: %w", err)
	}
	return nil
}
