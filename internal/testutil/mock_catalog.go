// Package testutil provides a mock catalog API and other test helpers.
package testutil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/catalog-client/pkg/catalog"
)

// APIPrefix is the path prefix of the mock API; use URL()+APIPrefix as
// the client base URL.
const APIPrefix = "/api"

// MockResponse defines a canned response for one path.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockCatalog is an httptest server that behaves like the catalog API:
// product listing with limit/offset/title/categoryId/price filters, slug
// lookup, categories, and images. Responses carry an ETag and honor
// If-None-Match.
type MockCatalog struct {
	server *httptest.Server

	mu         sync.RWMutex
	products   []catalog.Product
	categories []catalog.Category
	overrides  map[string]http.HandlerFunc
	delay      time.Duration

	requestCount      int
	conditionalCount  int
	lastRequestHeader http.Header
	lastQuery         string
}

// NewMockCatalog starts a mock API seeded with SampleCategories and
// SampleProducts(40).
func NewMockCatalog() *MockCatalog {
	m := &MockCatalog{
		products:   SampleProducts(40),
		categories: SampleCategories(),
		overrides:  make(map[string]http.HandlerFunc),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.serve))
	return m
}

// URL returns the server root URL.
func (m *MockCatalog) URL() string { return m.server.URL }

// BaseURL returns the API base URL for client.Config.BaseURL.
func (m *MockCatalog) BaseURL() string { return m.server.URL + APIPrefix }

// Close shuts down the server.
func (m *MockCatalog) Close() { m.server.Close() }

// SetProducts replaces the product fixture.
func (m *MockCatalog) SetProducts(products []catalog.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = products
}

// SetDelay delays every response.
func (m *MockCatalog) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// SetHandler overrides the handler for an exact path.
func (m *MockCatalog) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[path] = handler
}

// SetResponse overrides path with a canned response.
func (m *MockCatalog) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			_, _ = w.Write([]byte(resp.Body))
		}
	})
}

// RequestCount returns the number of requests received.
func (m *MockCatalog) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// ConditionalCount returns the number of requests carrying validators.
func (m *MockCatalog) ConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conditionalCount
}

// LastRequestHeader returns the headers of the latest request.
func (m *MockCatalog) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRequestHeader
}

// LastQuery returns the raw query of the latest request.
func (m *MockCatalog) LastQuery() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastQuery
}

// Reset clears the request counters.
func (m *MockCatalog) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.conditionalCount = 0
	m.lastRequestHeader = nil
	m.lastQuery = ""
}

func (m *MockCatalog) serve(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requestCount++
	m.lastRequestHeader = r.Header.Clone()
	m.lastQuery = r.URL.RawQuery
	if r.Header.Get("If-None-Match") != "" || r.Header.Get("If-Modified-Since") != "" {
		m.conditionalCount++
	}
	handler := m.overrides[r.URL.Path]
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if handler != nil {
		handler(w, r)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, APIPrefix+"/v1")
	switch {
	case path == "/products":
		m.writeJSON(w, r, m.listProducts(r.URL.RawQuery))
	case strings.HasPrefix(path, "/products/slug/"):
		slug := strings.TrimPrefix(path, "/products/slug/")
		if p, ok := m.productBySlug(slug); ok {
			m.writeJSON(w, r, p)
			return
		}
		writeError(w, http.StatusNotFound, fmt.Sprintf("Could not find any entity of type \"Product\" matching slug %q", slug))
	case path == "/categories":
		m.mu.RLock()
		categories := m.categories
		m.mu.RUnlock()
		m.writeJSON(w, r, categories)
	case strings.HasPrefix(r.URL.Path, "/images/"):
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(PNGBytes)
	default:
		writeError(w, http.StatusNotFound, "Cannot GET "+r.URL.Path)
	}
}

// listProducts applies the listing filters to the fixture. The query is
// parsed from the raw string so "categoryId=1&3" selects both categories.
func (m *MockCatalog) listProducts(rawQuery string) []catalog.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit, offset := len(m.products), 0
	var title string
	var categoryIDs map[int]bool
	priceMin, priceMax := -1.0, -1.0

	var lastKey string
	for _, part := range strings.Split(rawQuery, "&") {
		key, value, hasValue := strings.Cut(part, "=")
		if !hasValue && lastKey == "categoryId" {
			if id, err := strconv.Atoi(key); err == nil {
				categoryIDs[id] = true
			}
			continue
		}
		lastKey = key
		switch key {
		case "limit":
			limit, _ = strconv.Atoi(value)
		case "offset":
			offset, _ = strconv.Atoi(value)
		case "title":
			if unescaped, err := url.QueryUnescape(value); err == nil {
				value = unescaped
			}
			title = strings.ToLower(value)
		case "categoryId":
			categoryIDs = map[int]bool{}
			if id, err := strconv.Atoi(value); err == nil {
				categoryIDs[id] = true
			}
		case "price_min":
			priceMin, _ = strconv.ParseFloat(value, 64)
		case "price_max":
			priceMax, _ = strconv.ParseFloat(value, 64)
		}
	}

	var matched []catalog.Product
	for _, p := range m.products {
		if title != "" && !strings.Contains(strings.ToLower(p.Title), title) {
			continue
		}
		if categoryIDs != nil && !categoryIDs[p.Category.ID] {
			continue
		}
		if priceMin >= 0 && p.Price < priceMin {
			continue
		}
		if priceMax >= 0 && p.Price > priceMax {
			continue
		}
		matched = append(matched, p)
	}

	if offset >= len(matched) || limit <= 0 {
		return []catalog.Product{}
	}
	end := min(offset+limit, len(matched))
	return matched[offset:end]
}

func (m *MockCatalog) productBySlug(slug string) (catalog.Product, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.products {
		if p.Slug == slug {
			return p, true
		}
	}
	return catalog.Product{}, false
}

// writeJSON writes v with an ETag derived from the body, answering 304
// when the client already holds it.
func (m *MockCatalog) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sum := sha256.Sum256(body)
	etag := `"` + hex.EncodeToString(sum[:8]) + `"`

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "max-age=60")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message":    message,
		"error":      http.StatusText(status),
		"statusCode": status,
	})
}
