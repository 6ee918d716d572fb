package cache

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultTTL is the freshness lifetime of responses that carry neither
// Cache-Control max-age nor Expires.
const DefaultTTL = 5 * time.Minute

// ResponseToEntry reads resp into an Entry. The body is restored so the
// caller can still consume it. fallback is the freshness lifetime used when
// the response has no caching headers; values <= 0 mean DefaultTTL.
func ResponseToEntry(resp *http.Response, fallback time.Duration) (*Entry, error) {
	if resp == nil {
		return nil, fmt.Errorf("response cannot be nil")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	now := time.Now()
	entry := &Entry{
		Data:       body,
		ETag:       resp.Header.Get("ETag"),
		StatusCode: resp.StatusCode,
		Headers:    resp.Header.Clone(),
		CachedAt:   now,
	}
	entry.Expires, entry.noStore = freshness(resp.Header, now, fallback)

	if lastMod := resp.Header.Get("Last-Modified"); lastMod != "" {
		if t, err := http.ParseTime(lastMod); err == nil {
			entry.LastModified = t
		}
	}

	return entry, nil
}

// freshness computes the stale deadline from response headers.
// Cache-Control takes precedence over Expires.
func freshness(h http.Header, now time.Time, fallback time.Duration) (time.Time, bool) {
	if fallback <= 0 {
		fallback = DefaultTTL
	}

	if cc := h.Get("Cache-Control"); cc != "" {
		for _, directive := range strings.Split(cc, ",") {
			name, value, _ := strings.Cut(strings.TrimSpace(strings.ToLower(directive)), "=")
			switch name {
			case "no-store":
				return now, true
			case "no-cache":
				return now, false
			case "max-age":
				secs, err := strconv.Atoi(strings.Trim(value, `"`))
				if err != nil {
					continue
				}
				age, _ := strconv.Atoi(h.Get("Age"))
				return now.Add(time.Duration(secs-age) * time.Second), false
			}
		}
	}

	if expires := h.Get("Expires"); expires != "" {
		t, err := http.ParseTime(expires)
		if err != nil {
			// Invalid Expires means already expired.
			return now, false
		}
		if t.Before(now) {
			return now, false
		}
		return t, false
	}

	return now.Add(fallback), false
}

// Refresh applies a 304 Not Modified response to a stale entry: new
// validators replace the old ones and the freshness deadline restarts.
func Refresh(entry *Entry, resp *http.Response, fallback time.Duration) {
	if entry == nil || resp == nil {
		return
	}
	now := time.Now()
	entry.Expires, entry.noStore = freshness(resp.Header, now, fallback)
	entry.CachedAt = now
	if etag := resp.Header.Get("ETag"); etag != "" {
		entry.ETag = etag
	}
	if lastMod := resp.Header.Get("Last-Modified"); lastMod != "" {
		if t, err := http.ParseTime(lastMod); err == nil {
			entry.LastModified = t
		}
	}
}

// EntryToResponse rebuilds an HTTP response from a cached entry.
func EntryToResponse(entry *Entry, req *http.Request) *http.Response {
	header := entry.Headers.Clone()
	if header == nil {
		header = http.Header{}
	}
	header.Set("X-Cache", "HIT")
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", entry.StatusCode, http.StatusText(entry.StatusCode)),
		StatusCode:    entry.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(entry.Data)),
		ContentLength: int64(len(entry.Data)),
		Request:       req,
	}
}

// AddConditionalHeaders adds If-None-Match or If-Modified-Since to req.
// ETag is preferred when both validators are known.
func AddConditionalHeaders(req *http.Request, entry *Entry) {
	if entry == nil || req == nil {
		return
	}
	if req.Header == nil {
		req.Header = http.Header{}
	}

	if entry.ETag != "" {
		req.Header.Set("If-None-Match", entry.ETag)
	} else if !entry.LastModified.IsZero() {
		req.Header.Set("If-Modified-Since", entry.LastModified.UTC().Format(http.TimeFormat))
	}
}
