//go:build integration

package client

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/catalog-client/internal/testutil"
	"github.com/Sternrassler/catalog-client/pkg/catalog"
	"github.com/Sternrassler/catalog-client/pkg/ratelimit"
)

func TestClient_Integration_CacheHit(t *testing.T) {
	redisClient := testutil.StartRedis(t)
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	c := newTestClient(t, mock, func(cfg *Config) { cfg.Redis = redisClient })
	ctx := context.Background()

	first, err := c.Categories(ctx)
	require.NoError(t, err)

	second, err := c.Categories(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, mock.RequestCount(), "fresh entry must be served from Redis")
}

func TestClient_Integration_Revalidation(t *testing.T) {
	redisClient := testutil.StartRedis(t)
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	// max-age=0 makes every entry stale immediately; the ETag keeps it
	// revalidatable.
	body := `[{"id":1,"name":"Clothes","slug":"clothes"}]`
	mock.SetHandler(testutil.APIPrefix+"/v1/categories", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"cats-v1"`)
		w.Header().Set("Cache-Control", "max-age=0")
		if r.Header.Get("If-None-Match") == `"cats-v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		_, _ = io.WriteString(w, body)
	})

	c := newTestClient(t, mock, func(cfg *Config) { cfg.Redis = redisClient })
	ctx := context.Background()

	_, err := c.Categories(ctx)
	require.NoError(t, err)

	categories, err := c.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Clothes", categories[0].Name)

	assert.Equal(t, 2, mock.RequestCount())
	assert.Equal(t, 1, mock.ConditionalCount())
}

func TestClient_Integration_SharedRateLimitState(t *testing.T) {
	redisClient := testutil.StartRedis(t)
	mock := testutil.NewMockCatalog()
	defer mock.Close()
	mock.SetResponse(testutil.APIPrefix+"/v1/categories", testutil.MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Headers:    map[string]string{"Retry-After": "60"},
	})

	limited := func(cfg *Config) {
		cfg.Redis = redisClient
		cfg.RateLimit = ratelimit.Config{MaxWait: 10 * time.Millisecond}
	}
	first := newTestClient(t, mock, limited)
	second := newTestClient(t, mock, limited)

	_, err := first.Categories(context.Background())
	require.Error(t, err)

	_, err = second.ListProducts(context.Background(), catalog.NewProductListParams(""))
	assert.ErrorIs(t, err, ratelimit.ErrRateLimited)
	assert.Equal(t, 1, mock.RequestCount())
}
