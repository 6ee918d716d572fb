package cache

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func response(status int, header http.Header, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestResponseToEntry(t *testing.T) {
	lastMod := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	resp := response(http.StatusOK, http.Header{
		"Etag":          []string{`"abc123"`},
		"Last-Modified": []string{lastMod.Format(http.TimeFormat)},
		"Content-Type":  []string{"application/json"},
	}, `[{"id":1}]`)

	entry, err := ResponseToEntry(resp, 0)
	if err != nil {
		t.Fatalf("ResponseToEntry() error = %v", err)
	}

	body, _ := io.ReadAll(resp.Body)
	if string(body) != `[{"id":1}]` {
		t.Errorf("Response body was not restored, got %q", body)
	}
	if string(entry.Data) != `[{"id":1}]` {
		t.Errorf("Data = %q", entry.Data)
	}
	if entry.ETag != `"abc123"` {
		t.Errorf("ETag = %q, want %q", entry.ETag, `"abc123"`)
	}
	if !entry.LastModified.Equal(lastMod) {
		t.Errorf("LastModified = %v, want %v", entry.LastModified, lastMod)
	}
	if ttl := entry.TTL(); ttl < DefaultTTL-2*time.Second || ttl > DefaultTTL {
		t.Errorf("TTL() = %v, want about %v", ttl, DefaultTTL)
	}
}

func TestResponseToEntry_Nil(t *testing.T) {
	if _, err := ResponseToEntry(nil, 0); err == nil {
		t.Error("ResponseToEntry(nil) should fail")
	}
}

func TestFreshness(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		header      http.Header
		fallback    time.Duration
		want        time.Time
		wantNoStore bool
	}{
		{
			name:   "no caching headers",
			header: http.Header{},
			want:   now.Add(DefaultTTL),
		},
		{
			name:     "custom fallback",
			header:   http.Header{},
			fallback: time.Minute,
			want:     now.Add(time.Minute),
		},
		{
			name:   "max-age",
			header: http.Header{"Cache-Control": []string{"public, max-age=60"}},
			want:   now.Add(60 * time.Second),
		},
		{
			name:   "max-age minus age",
			header: http.Header{"Cache-Control": []string{"max-age=60"}, "Age": []string{"20"}},
			want:   now.Add(40 * time.Second),
		},
		{
			name: "max-age wins over expires",
			header: http.Header{
				"Cache-Control": []string{"max-age=10"},
				"Expires":       []string{now.Add(time.Hour).Format(http.TimeFormat)},
			},
			want: now.Add(10 * time.Second),
		},
		{
			name:   "expires",
			header: http.Header{"Expires": []string{now.Add(time.Hour).Format(http.TimeFormat)}},
			want:   now.Add(time.Hour),
		},
		{
			name:   "expires in the past",
			header: http.Header{"Expires": []string{now.Add(-time.Hour).Format(http.TimeFormat)}},
			want:   now,
		},
		{
			name:   "invalid expires",
			header: http.Header{"Expires": []string{"0"}},
			want:   now,
		},
		{
			name:   "no-cache",
			header: http.Header{"Cache-Control": []string{"no-cache"}},
			want:   now,
		},
		{
			name:        "no-store",
			header:      http.Header{"Cache-Control": []string{"private, no-store"}},
			want:        now,
			wantNoStore: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, noStore := freshness(tt.header, now, tt.fallback)
			if !got.Equal(tt.want) {
				t.Errorf("freshness() = %v, want %v", got, tt.want)
			}
			if noStore != tt.wantNoStore {
				t.Errorf("noStore = %v, want %v", noStore, tt.wantNoStore)
			}
		})
	}
}

func TestRefresh(t *testing.T) {
	entry := &Entry{
		Data:    []byte("cached"),
		ETag:    `"v1"`,
		Expires: time.Now().Add(-time.Minute),
	}

	Refresh(entry, response(http.StatusNotModified, http.Header{
		"Etag":          []string{`"v2"`},
		"Cache-Control": []string{"max-age=120"},
	}, ""), 0)

	if entry.IsExpired() {
		t.Error("entry should be fresh after refresh")
	}
	if entry.ETag != `"v2"` {
		t.Errorf("ETag = %q, want %q", entry.ETag, `"v2"`)
	}
	if string(entry.Data) != "cached" {
		t.Errorf("Data changed to %q", entry.Data)
	}
}

func TestEntryToResponse(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "https://example.com/v1/products", nil)
	entry := &Entry{
		Data:       []byte(`[]`),
		StatusCode: http.StatusOK,
		Headers:    http.Header{"Content-Type": []string{"application/json"}},
	}

	resp := EntryToResponse(entry, req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK || resp.Status != "200 OK" {
		t.Errorf("status = %d %q", resp.StatusCode, resp.Status)
	}
	if resp.Header.Get("X-Cache") != "HIT" {
		t.Error("X-Cache header missing")
	}
	if entry.Headers.Get("X-Cache") != "" {
		t.Error("entry headers must not be mutated")
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "[]" {
		t.Errorf("body = %q", body)
	}
	if resp.Request != req {
		t.Error("request not attached")
	}
}

func TestAddConditionalHeaders(t *testing.T) {
	lastMod := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		entry      *Entry
		wantHeader string
		wantValue  string
	}{
		{
			name:       "etag",
			entry:      &Entry{ETag: `"abc123"`},
			wantHeader: "If-None-Match",
			wantValue:  `"abc123"`,
		},
		{
			name:       "last-modified",
			entry:      &Entry{LastModified: lastMod},
			wantHeader: "If-Modified-Since",
			wantValue:  "Sun, 01 Jan 2023 12:00:00 GMT",
		},
		{
			name:       "etag preferred",
			entry:      &Entry{ETag: `"abc123"`, LastModified: lastMod},
			wantHeader: "If-None-Match",
			wantValue:  `"abc123"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
			AddConditionalHeaders(req, tt.entry)

			if got := req.Header.Get(tt.wantHeader); got != tt.wantValue {
				t.Errorf("Header %s = %v, want %v", tt.wantHeader, got, tt.wantValue)
			}
		})
	}

	// nil inputs are ignored
	AddConditionalHeaders(nil, &Entry{ETag: "x"})
	AddConditionalHeaders(&http.Request{}, nil)
}
