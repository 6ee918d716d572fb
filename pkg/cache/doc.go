// Package cache stores catalog API responses in Redis and supports
// revalidating them with conditional requests.
//
// Entries carry the response body together with its validators (ETag,
// Last-Modified) and a freshness deadline taken from Cache-Control max-age,
// Expires, or a configured default. Redis keeps an entry for a retention
// window beyond that deadline so a stale entry can still be revalidated
// with If-None-Match / If-Modified-Since and refreshed on 304.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	manager := cache.NewManager(redisClient)
//
//	key := cache.KeyFromURL(req.URL)
//	entry, err := manager.Get(ctx, key)
//	switch {
//	case errors.Is(err, cache.ErrCacheMiss):
//		// fetch from the API
//	case entry.IsExpired():
//		cache.AddConditionalHeaders(req, entry)
//	default:
//		return cache.EntryToResponse(entry, req)
//	}
//
// # HTTP Response Caching
//
//	entry, err := cache.ResponseToEntry(resp, cache.DefaultTTL)
//	if err != nil {
//		return err
//	}
//	if entry.Cacheable() {
//		err = manager.Set(ctx, key, entry)
//	}
//
// # Metrics
//
//   - catalog_cache_hits_total - fresh entries served
//   - catalog_cache_stale_total - stale entries returned for revalidation
//   - catalog_cache_misses_total - cache misses
//   - catalog_cache_size_bytes - bytes written
//   - catalog_304_responses_total - successful revalidations
//   - catalog_conditional_requests_total - requests sent with validators
//   - catalog_cache_errors_total{operation} - Redis or decode failures
package cache
