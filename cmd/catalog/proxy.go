package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/Sternrassler/catalog-client/pkg/client"
	"github.com/Sternrassler/catalog-client/pkg/logging"
	"github.com/Sternrassler/catalog-client/pkg/metrics"
	"github.com/Sternrassler/catalog-client/pkg/ratelimit"
)

const (
	proxyTimeout    = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// hopHeaders are not forwarded to proxy clients.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

func runProxy(c *cli.Context) error {
	s, err := openSession(c, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	addr := s.cfg.ProxyAddr
	if c.IsSet("addr") {
		addr = c.String("addr")
	}
	metricsAddr := s.cfg.MetricsAddr
	if c.IsSet("metrics-addr") {
		metricsAddr = c.String("metrics-addr")
	}

	upstream, err := url.Parse(s.cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base url %q: %w", s.cfg.BaseURL, err)
	}

	logger := logging.NewLogger("proxy")
	var rdb redis.Cmdable
	if s.redis != nil {
		rdb = s.redis
	}
	mux := newProxyMux(s.client, upstream, rdb, logger)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 2)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("proxy server: %w", err)
		}
	}()

	var metricsServer *metrics.Server
	if metricsAddr != "" {
		metricsServer = metrics.NewServer(metricsAddr, metrics.Gatherer)
		go func() {
			if err, ok := <-metricsServer.Start(); ok {
				errCh <- err
			}
		}()
		logger.Info().Str("addr", metricsAddr).Msg("Metrics server listening")
	}

	logger.Info().
		Str("addr", addr).
		Str("upstream", upstream.String()).
		Bool("cache", s.redis != nil).
		Msg("Starting catalog proxy")

	var runErr error
	select {
	case <-c.Context.Done():
	case runErr = <-errCh:
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("Proxy shutdown failed")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Warn().Err(err).Msg("Metrics shutdown failed")
		}
	}
	logger.Info().Msg("Proxy stopped")
	return runErr
}

// newProxyMux routes the upstream API path through the client and adds
// /ready, /health and /metrics.
func newProxyMux(c *client.Client, upstream *url.URL, rdb redis.Cmdable, logger zerolog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	prefix := strings.TrimSuffix(upstream.Path, "/") + "/"
	mux.Handle(prefix, proxyHandler(c, upstream, logger))
	mux.HandleFunc("/ready", readyHandler(rdb))
	metrics.Mount(mux, metrics.Gatherer)
	return mux
}

// readyHandler reports whether the cache backend is reachable. Without
// Redis the proxy is always ready.
func readyHandler(rdb redis.Cmdable) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rdb != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	}
}

// proxyHandler forwards GET and HEAD requests to upstream through c, so
// responses are cached and rate limited like any client request.
func proxyHandler(c *client.Client, upstream *url.URL, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		target := url.URL{
			Scheme:   upstream.Scheme,
			Host:     upstream.Host,
			Path:     r.URL.Path,
			RawPath:  r.URL.RawPath,
			RawQuery: r.URL.RawQuery,
		}

		ctx, cancel := context.WithTimeout(r.Context(), proxyTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, r.Method, target.String(), nil)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest)
			return
		}
		if accept := r.Header.Get("Accept"); accept != "" {
			req.Header.Set("Accept", accept)
		}

		resp, err := c.Do(req)
		if err != nil {
			status := http.StatusBadGateway
			if errors.Is(err, ratelimit.ErrRateLimited) {
				status = http.StatusTooManyRequests
			}
			logger.Warn().
				Err(err).
				Str("url", target.String()).
				Int("status", status).
				Msg("Upstream request failed")
			http.Error(w, fmt.Sprintf("catalog request failed: %v", err), status)
			return
		}
		defer resp.Body.Close()

		for key, values := range resp.Header {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}
		for _, h := range hopHeaders {
			w.Header().Del(h)
		}
		w.WriteHeader(resp.StatusCode)

		if r.Method == http.MethodHead {
			return
		}
		if _, err := io.Copy(w, resp.Body); err != nil {
			logger.Debug().Err(err).Str("url", target.String()).Msg("Failed to write response")
		}
	}
}
