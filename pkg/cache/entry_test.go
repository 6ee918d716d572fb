package cache

import (
	"net/http"
	"testing"
	"time"
)

func TestEntry_IsExpired(t *testing.T) {
	tests := []struct {
		name    string
		expires time.Time
		want    bool
	}{
		{name: "stale entry", expires: time.Now().Add(-time.Hour), want: true},
		{name: "fresh entry", expires: time.Now().Add(time.Hour), want: false},
		{name: "zero expiry", expires: time.Time{}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &Entry{Expires: tt.expires}
			if got := entry.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntry_TTL(t *testing.T) {
	fresh := &Entry{Expires: time.Now().Add(5 * time.Minute)}
	if got := fresh.TTL(); got < 4*time.Minute || got > 5*time.Minute {
		t.Errorf("TTL() = %v, want about 5m", got)
	}

	stale := &Entry{Expires: time.Now().Add(-time.Minute)}
	if got := stale.TTL(); got != 0 {
		t.Errorf("TTL() = %v, want 0 for stale entry", got)
	}
}

func TestEntry_Cacheable(t *testing.T) {
	future := time.Now().Add(time.Minute)
	past := time.Now().Add(-time.Minute)

	tests := []struct {
		name  string
		entry *Entry
		want  bool
	}{
		{name: "nil", entry: nil, want: false},
		{name: "fresh 200", entry: &Entry{StatusCode: http.StatusOK, Expires: future}, want: true},
		{name: "stale 200 with etag", entry: &Entry{StatusCode: http.StatusOK, Expires: past, ETag: `"v1"`}, want: true},
		{name: "stale 200 without validators", entry: &Entry{StatusCode: http.StatusOK, Expires: past}, want: false},
		{name: "404", entry: &Entry{StatusCode: http.StatusNotFound, Expires: future}, want: false},
		{name: "no-store", entry: &Entry{StatusCode: http.StatusOK, Expires: future, noStore: true}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Cacheable(); got != tt.want {
				t.Errorf("Cacheable() = %v, want %v", got, tt.want)
			}
		})
	}
}
