// Package metrics documents the Prometheus metrics exported by the catalog
// client and serves them over HTTP.
//
// The metrics themselves are defined in their owning packages (client,
// cache, ratelimit) and registered via promauto on the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the registerer the catalog packages register into.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer matching Registry; pass it to NewServer.
var Gatherer = prometheus.DefaultGatherer

// Metrics Documentation
//
// Rate Limit Metrics (pkg/ratelimit):
//   - catalog_ratelimit_remaining (Gauge): Requests remaining as last reported upstream
//   - catalog_ratelimit_waits_total (Counter): Requests delayed by the local token bucket
//   - catalog_ratelimit_blocks_total (Counter): Requests refused while the upstream budget is exhausted
//
// Cache Metrics (pkg/cache):
//   - catalog_cache_hits_total (Counter): Fresh cache hits served without a request
//   - catalog_cache_misses_total (Counter): Cache misses
//   - catalog_cache_size_bytes (Gauge): Approximate size of cached bodies
//   - catalog_304_responses_total (Counter): 304 Not Modified responses
//   - catalog_conditional_requests_total (Counter): Requests sent with validators
//   - catalog_cache_errors_total{operation} (Counter): Cache operation errors
//
// Request Metrics (pkg/client):
//   - catalog_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - catalog_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - catalog_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client, only when retries are enabled):
//   - catalog_retries_total{error_class} (Counter): Retry attempts by error class
//   - catalog_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - catalog_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Example Prometheus Queries:
//
//	# Cache Hit Rate
//	sum(rate(catalog_cache_hits_total[5m])) /
//	(sum(rate(catalog_cache_hits_total[5m])) + sum(rate(catalog_cache_misses_total[5m])))
//
//	# P95 Request Latency
//	histogram_quantile(0.95, rate(catalog_request_duration_seconds_bucket[5m]))
//
//	# 304 Response Rate
//	rate(catalog_304_responses_total[5m]) / rate(catalog_requests_total[5m])
