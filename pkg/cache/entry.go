package cache

import (
	"net/http"
	"time"
)

// Entry is a cached API response.
type Entry struct {
	// Data is the response body
	Data []byte `json:"data"`

	// ETag for If-None-Match
	ETag string `json:"etag,omitempty"`

	// Expires is when the entry becomes stale
	Expires time.Time `json:"expires"`

	// LastModified for If-Modified-Since
	LastModified time.Time `json:"last_modified,omitzero"`

	StatusCode int         `json:"status_code"`
	Headers    http.Header `json:"headers"`
	CachedAt   time.Time   `json:"cached_at"`

	// noStore is set when the response forbids caching.
	noStore bool
}

// IsExpired reports whether the entry is stale.
func (e *Entry) IsExpired() bool {
	return !time.Now().Before(e.Expires)
}

// TTL returns the time until the entry goes stale, or 0.
func (e *Entry) TTL() time.Duration {
	return max(time.Until(e.Expires), 0)
}

// Revalidatable reports whether a conditional request can refresh the entry.
func (e *Entry) Revalidatable() bool {
	return e != nil && (e.ETag != "" || !e.LastModified.IsZero())
}

// Cacheable reports whether the entry may be stored: a 200 response that
// is either still fresh or can be revalidated later.
func (e *Entry) Cacheable() bool {
	if e == nil || e.noStore || e.StatusCode != http.StatusOK {
		return false
	}
	return e.TTL() > 0 || e.Revalidatable()
}
