package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/catalog-client/internal/testutil"
	"github.com/Sternrassler/catalog-client/pkg/catalog"
	"github.com/Sternrassler/catalog-client/pkg/client"
	"github.com/Sternrassler/catalog-client/pkg/ratelimit"
)

func setupProxy(t *testing.T, rdb redis.Cmdable) (*http.ServeMux, *testutil.MockCatalog) {
	t.Helper()
	mock := testutil.NewMockCatalog()
	t.Cleanup(mock.Close)

	cfg := client.DefaultConfig()
	cfg.BaseURL = mock.BaseURL()
	cfg.UserAgent = "test/1.0"
	cfg.RateLimit = ratelimit.Config{}
	cfg.Redis = rdb
	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	upstream, err := url.Parse(mock.BaseURL())
	if err != nil {
		t.Fatalf("Failed to parse upstream: %v", err)
	}
	return newProxyMux(c, upstream, rdb, zerolog.Nop()), mock
}

func serve(mux http.Handler, method, target string) *http.Response {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w.Result()
}

func TestHealthEndpoint(t *testing.T) {
	mux, _ := setupProxy(t, nil)

	resp := serve(mux, http.MethodGet, "/health")
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if string(body) != "ok" {
		t.Errorf("Expected body 'ok', got %s", string(body))
	}
}

func TestReadyEndpoint(t *testing.T) {
	t.Run("ready_without_redis", func(t *testing.T) {
		resp := serve(readyHandler(nil), http.MethodGet, "/ready")
		body, _ := io.ReadAll(resp.Body)

		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected status 200, got %d", resp.StatusCode)
		}
		if string(body) != "OK" {
			t.Errorf("Expected body 'OK', got %s", string(body))
		}
	})

	t.Run("not_ready_redis_down", func(t *testing.T) {
		rdb := redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 100 * time.Millisecond,
			MaxRetries:  -1,
		})
		defer rdb.Close()

		resp := serve(readyHandler(rdb), http.MethodGet, "/ready")
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", resp.StatusCode)
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	mux, _ := setupProxy(t, nil)

	serve(mux, http.MethodGet, "/api/v1/categories")

	resp := serve(mux, http.MethodGet, "/metrics")
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	bodyStr := string(body)
	if !strings.Contains(bodyStr, "# HELP") || !strings.Contains(bodyStr, "# TYPE") {
		t.Error("Expected Prometheus format metrics output")
	}
	if !strings.Contains(bodyStr, "catalog_requests_total") {
		t.Error("Expected metrics output to contain catalog_requests_total")
	}
}

func TestProxyHandler(t *testing.T) {
	mux, mock := setupProxy(t, nil)

	t.Run("categories", func(t *testing.T) {
		resp := serve(mux, http.MethodGet, "/api/v1/categories")
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", resp.StatusCode)
		}
		if resp.Header.Get("ETag") == "" {
			t.Error("Expected upstream ETag to be forwarded")
		}

		var categories []catalog.Category
		if err := json.NewDecoder(resp.Body).Decode(&categories); err != nil {
			t.Fatalf("Failed to decode body: %v", err)
		}
		if len(categories) != 5 {
			t.Errorf("Expected 5 categories, got %d", len(categories))
		}
	})

	t.Run("query_forwarded", func(t *testing.T) {
		resp := serve(mux, http.MethodGet, "/api/v1/products?limit=2&offset=4&title=")
		defer resp.Body.Close()

		var products []catalog.Product
		if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
			t.Fatalf("Failed to decode body: %v", err)
		}
		if len(products) != 2 || products[0].ID != 5 {
			t.Errorf("Expected products 5 and 6, got %+v", products)
		}
		if got := mock.LastQuery(); got != "limit=2&offset=4&title=" {
			t.Errorf("Expected query to be forwarded verbatim, got %q", got)
		}
	})

	t.Run("upstream_status_passed_through", func(t *testing.T) {
		resp := serve(mux, http.MethodGet, "/api/v1/products/slug/nope")
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", resp.StatusCode)
		}
	})

	t.Run("head", func(t *testing.T) {
		resp := serve(mux, http.MethodHead, "/api/v1/categories")
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected status 200, got %d", resp.StatusCode)
		}
		if len(body) != 0 {
			t.Errorf("Expected empty HEAD body, got %d bytes", len(body))
		}
	})

	t.Run("method_not_allowed", func(t *testing.T) {
		resp := serve(mux, http.MethodPost, "/api/v1/products")
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("Expected status 405, got %d", resp.StatusCode)
		}
	})
}

func TestProxyHandler_UpstreamDown(t *testing.T) {
	mux, mock := setupProxy(t, nil)
	mock.Close()

	resp := serve(mux, http.MethodGet, "/api/v1/categories")
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", resp.StatusCode)
	}
}
