// Package client provides the catalog HTTP client with rate limiting,
// response caching, and error classification. *Client implements
// fetch.Doer, so it can back a fetch.Resource.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/catalog-client/pkg/cache"
	"github.com/Sternrassler/catalog-client/pkg/catalog"
	"github.com/Sternrassler/catalog-client/pkg/fetch"
	"github.com/Sternrassler/catalog-client/pkg/ratelimit"
)

// Prometheus metrics for catalog requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_requests_total",
		Help: "Total catalog requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_request_duration_seconds",
		Help:    "Catalog request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_errors_total",
		Help: "Total catalog errors by class",
	}, []string{"class"})
)

var _ fetch.Doer = (*Client)(nil)

// DefaultUserAgent identifies the client when none is configured.
const DefaultUserAgent = "catalog-client/1.0"

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.escuelajs.co/api".
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout bounds a single HTTP attempt.
	Timeout time.Duration

	// Redis enables response caching and shared rate limit state; nil
	// disables both.
	Redis redis.Cmdable

	// CacheTTL is the freshness lifetime of responses without caching
	// headers.
	CacheTTL time.Duration

	// RateLimit configures the outbound token bucket.
	RateLimit ratelimit.Config

	// Retry is disabled unless Retry.MaxRetries > 0.
	Retry RetryConfig

	// HTTPClient overrides the transport (tests, proxies).
	HTTPClient *http.Client
}

// DefaultConfig returns a configuration for the public API.
func DefaultConfig() Config {
	return Config{
		BaseURL:   catalog.DefaultBaseURL,
		UserAgent: DefaultUserAgent,
		Timeout:   15 * time.Second,
		CacheTTL:  cache.DefaultTTL,
		RateLimit: ratelimit.DefaultConfig(),
		Retry:     DefaultRetryConfig(),
	}
}

// Client is the catalog API client.
type Client struct {
	httpClient *http.Client
	limiter    *ratelimit.Tracker
	cache      *cache.Manager
	endpoints  catalog.Endpoints
	apiHost    string
	userAgent  string
	cacheTTL   time.Duration
	retry      RetryConfig
	logger     zerolog.Logger
}

// New creates a catalog client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}
	if cfg.Retry.MaxRetries < 0 {
		return nil, fmt.Errorf("max retries must be >= 0 (got %d)", cfg.Retry.MaxRetries)
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	logger := log.With().Str("component", "client").Logger()

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{
		httpClient: httpClient,
		endpoints:  catalog.Endpoints{BaseURL: cfg.BaseURL, Version: catalog.V1},
		apiHost:    base.Host,
		userAgent:  cfg.UserAgent,
		cacheTTL:   cfg.CacheTTL,
		retry:      cfg.Retry,
		logger:     logger,
	}

	var store ratelimit.Store
	if cfg.Redis != nil {
		c.cache = cache.NewManager(cfg.Redis)
		store = ratelimit.NewRedisStore(cfg.Redis)
	}
	c.limiter = ratelimit.NewTracker(cfg.RateLimit,
		store, log.With().Str("component", "ratelimit").Logger())

	return c, nil
}

// Endpoints returns the URL builder for the configured API.
func (c *Client) Endpoints() catalog.Endpoints {
	return c.endpoints
}

// Do performs req with rate limiting, caching, and error classification.
// Like http.Client it returns a response for any HTTP status; only
// transport failures and rate limiting produce an error.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	endpoint := c.endpointLabel(req.URL)

	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	req.Header.Set("User-Agent", c.userAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	// Cache lookup
	var (
		key    cache.Key
		cached *cache.Entry
	)
	cacheable := c.cache != nil && req.Method == http.MethodGet
	if cacheable {
		key = cache.KeyFromURL(req.URL)
		entry, err := c.cache.Get(ctx, key)
		switch {
		case err == nil && !entry.IsExpired():
			c.logger.Debug().Str("url", req.URL.String()).Msg("Cache hit")
			requestsTotal.WithLabelValues(endpoint, "cache").Inc()
			return cache.EntryToResponse(entry, req), nil
		case err == nil:
			cached = entry
			cache.AddConditionalHeaders(req, entry)
			cache.ConditionalRequestsSent.Inc()
			c.logger.Debug().
				Str("url", req.URL.String()).
				Str("etag", entry.ETag).
				Msg("Making conditional request")
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
		}
	}

	resp, err := c.send(ctx, req, endpoint)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		c.logger.Info().Str("url", req.URL.String()).Msg("304 Not Modified - using cache")
		cache.NotModifiedResponses.Inc()
		drain(resp)

		cache.Refresh(cached, resp, c.cacheTTL)
		if err := c.cache.Set(ctx, key, cached); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to refresh cache entry")
		}
		return cache.EntryToResponse(cached, req), nil
	}

	if cacheable && resp.StatusCode == http.StatusOK {
		c.store(ctx, key, resp)
	}

	return resp, nil
}

// send executes one request, retrying retriable failures when enabled.
func (c *Client) send(ctx context.Context, req *http.Request, endpoint string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			requestsTotal.WithLabelValues(endpoint, "rate_limited").Inc()
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Request blocked by rate limiter")
			return nil, err
		}

		c.logger.Debug().
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Msg("Executing catalog request")

		resp, err := c.httpClient.Do(req)
		class := classify(resp, err)

		if err != nil {
			requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		} else {
			requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
			if err := c.limiter.UpdateFromHeaders(ctx, resp.Header); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
			}
		}

		if class != "" {
			errorsTotal.WithLabelValues(string(class)).Inc()
			event := c.logger.Warn().Str("endpoint", endpoint).Str("error_class", string(class))
			if err != nil {
				event.Err(err).Msg("Catalog request failed")
			} else {
				event.Int("status", resp.StatusCode).Msg("Catalog request error")
			}
		}

		retriable := class != "" && shouldRetry(class) && ctx.Err() == nil
		if !retriable || attempt >= c.retry.MaxRetries {
			if retriable && c.retry.MaxRetries > 0 {
				retryExhaustedTotal.WithLabelValues(string(class)).Inc()
			}
			if err != nil {
				if attempt > 0 {
					return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, attempt+1, err)
				}
				return nil, err
			}
			return resp, nil
		}

		if resp != nil {
			drain(resp)
		}
		if err := c.waitBackoff(ctx, class, attempt); err != nil {
			return nil, err
		}
	}
}

// store caches a 200 response, leaving resp readable.
func (c *Client) store(ctx context.Context, key cache.Key, resp *http.Response) {
	entry, err := cache.ResponseToEntry(resp, c.cacheTTL)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to create cache entry")
		return
	}
	if !entry.Cacheable() {
		return
	}
	if err := c.cache.Set(ctx, key, entry); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to cache response")
		return
	}
	c.logger.Debug().
		Str("url", resp.Request.URL.String()).
		Dur("ttl", entry.TTL()).
		Msg("Cached response")
}

// endpointLabel collapses a URL into a low-cardinality metric label.
func (c *Client) endpointLabel(u *url.URL) string {
	if u.Host != c.apiHost {
		return "external"
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, s := range segments {
		switch {
		case i > 0 && segments[i-1] == "slug":
			segments[i] = ":slug"
		case s != "" && strings.Trim(s, "0123456789") == "":
			segments[i] = ":id"
		}
	}
	return "/" + strings.Join(segments, "/")
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
