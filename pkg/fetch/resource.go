package fetch

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// State is a snapshot of a Resource.
type State[T any] struct {
	// Data is nil until a request succeeds. A failed refetch keeps the
	// previous value.
	Data *T

	// IsLoading is nil before the first request, true while the first load
	// (no data yet) is in flight and false afterwards.
	IsLoading *bool

	// IsFetching is true while any request is in flight.
	IsFetching bool

	// IsError is true when the last settled request failed.
	IsError bool
}

// Loading reports IsLoading, treating unset as false.
func (s State[T]) Loading() bool {
	return s.IsLoading != nil && *s.IsLoading
}

// activation is the cancellation handle of one issued request.
type activation struct {
	cancel context.CancelFunc
	once   sync.Once
}

func (a *activation) stop() {
	a.once.Do(a.cancel)
}

// Resource keeps the latest response for a changing request input.
//
// Every Subscribe with a new input cancels the request in flight and issues
// a fresh one. Only the most recently issued request may commit into the
// state; a superseded request is cancelled at the transport and its late
// result, if any, is dropped. Failures never propagate: they surface as
// IsError. There is no retry and no timeout at this layer.
type Resource[T any] struct {
	doer   Doer
	parent context.Context
	logger zerolog.Logger

	mu       sync.Mutex
	state    State[T]
	identity string
	input    Input
	current  *activation
	closed   bool
	changes  chan struct{}

	wg sync.WaitGroup
}

// Option configures a Resource.
type Option func(*options)

type options struct {
	ctx    context.Context
	logger *zerolog.Logger
}

// WithContext sets the parent context of all requests. Cancelling it has
// the same effect as Close on in-flight work.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

// WithLogger overrides the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = &logger }
}

// New creates an idle Resource that issues requests through doer.
func New[T any](doer Doer, opts ...Option) *Resource[T] {
	o := options{ctx: context.Background()}
	for _, opt := range opts {
		opt(&o)
	}

	logger := log.With().Str("component", "fetch").Logger()
	if o.logger != nil {
		logger = *o.logger
	}

	return &Resource[T]{
		doer:    doer,
		parent:  o.ctx,
		logger:  logger,
		changes: make(chan struct{}, 1),
	}
}

// State returns a snapshot of the current state.
func (r *Resource[T]) State() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Changes delivers a coalesced signal after every state transition. The
// channel is closed by Close.
func (r *Resource[T]) Changes() <-chan struct{} {
	return r.changes
}

// Subscribe points the resource at in. Inputs equal by identity to the
// current one are ignored; anything else cancels the in-flight request and,
// unless in.URL is empty, issues a new one.
func (r *Resource[T]) Subscribe(in Input) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	identity := ""
	if in.URL != "" {
		identity = in.Identity()
	}
	if identity == r.identity {
		return
	}
	r.identity = identity
	r.input = in

	r.stopLocked()
	r.issueLocked()
}

// Reload re-issues the current input, e.g. after an error. It is a no-op
// while disabled or closed.
func (r *Resource[T]) Reload() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.identity == "" {
		return
	}
	r.stopLocked()
	r.issueLocked()
}

func (r *Resource[T]) issueLocked() {
	in := r.input

	if in.URL == "" {
		r.logger.Debug().Msg("Subscription disabled")
		r.notifyLocked()
		return
	}

	ctx, cancel := context.WithCancel(r.parent)
	req, err := NewRequest(ctx, in)
	if err != nil {
		cancel()
		r.logger.Warn().Err(err).Str("url", in.URL).Msg("Fetch failed")
		r.state.IsError = true
		r.notifyLocked()
		return
	}

	act := &activation{cancel: cancel}
	r.current = act

	initial := r.state.Data == nil
	r.state.IsFetching = true
	if initial {
		loading := true
		r.state.IsLoading = &loading
	}
	r.state.IsError = false
	r.notifyLocked()

	r.logger.Debug().
		Str("url", req.URL.String()).
		Bool("initial", initial).
		Msg("Issuing request")

	r.wg.Add(1)
	go r.run(ctx, act, req, initial)
}

// Close cancels in-flight work, waits for it to unwind and closes Changes.
// The resource ignores Subscribe afterwards.
func (r *Resource[T]) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.stopLocked()
	r.mu.Unlock()

	r.wg.Wait()

	r.mu.Lock()
	close(r.changes)
	r.mu.Unlock()
}

// Wait blocks until every issued request has settled or been abandoned.
func (r *Resource[T]) Wait() {
	r.wg.Wait()
}

// stopLocked cancels the current activation. A request that was in flight
// can no longer commit, so its fetching flags are settled here.
func (r *Resource[T]) stopLocked() {
	if r.current == nil {
		return
	}
	r.current.stop()
	r.current = nil

	if r.state.IsFetching {
		r.state.IsFetching = false
		if r.state.Loading() {
			loading := false
			r.state.IsLoading = &loading
		}
	}
}

func (r *Resource[T]) run(ctx context.Context, act *activation, req *http.Request, initial bool) {
	defer r.wg.Done()

	data, err := decode[T](r.doer, req)

	r.mu.Lock()
	defer r.mu.Unlock()

	if ctx.Err() != nil || r.current != act || r.closed {
		r.logger.Debug().
			Str("url", req.URL.String()).
			Msg("Discarding cancelled request")
		return
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		r.logger.Warn().
			Err(err).
			Str("url", req.URL.String()).
			Msg("Fetch failed")
		r.state.IsError = true
		if initial {
			r.state.Data = nil
		}
	} else {
		r.state.Data = data
		r.state.IsError = false
	}

	r.state.IsFetching = false
	if initial {
		loading := false
		r.state.IsLoading = &loading
	}

	r.current = nil
	act.stop()
	r.notifyLocked()
}

func (r *Resource[T]) notifyLocked() {
	if r.closed {
		return
	}
	select {
	case r.changes <- struct{}{}:
	default:
	}
}
