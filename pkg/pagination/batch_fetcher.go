package pagination

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Config holds batch fetcher configuration
type Config struct {
	// MaxConcurrency is the maximum number of parallel requests
	MaxConcurrency int
	// Timeout per page fetch
	Timeout time.Duration
	// PageSize is the number of items requested per page
	PageSize int
}

// DefaultConfig returns a conservative configuration for a public API
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        15 * time.Second,
		PageSize:       12,
	}
}

// PageFetcher fetches a single page. It returns the raw payload and the
// number of items it contained; a page with zero items marks the end of the
// listing.
type PageFetcher interface {
	FetchPage(ctx context.Context, offset, limit int) (data []byte, items int, err error)
}

// PageFetcherFunc adapts a function to PageFetcher.
type PageFetcherFunc func(ctx context.Context, offset, limit int) ([]byte, int, error)

// FetchPage implements PageFetcher.
func (f PageFetcherFunc) FetchPage(ctx context.Context, offset, limit int) ([]byte, int, error) {
	return f(ctx, offset, limit)
}

// PageResult represents the result of fetching a single page
type PageResult struct {
	PageNumber int
	Data       []byte
	Items      int
}

// BatchFetcher handles parallel fetching of multiple pages
type BatchFetcher struct {
	fetcher PageFetcher
	config  Config
}

// NewBatchFetcher creates a new batch fetcher
func NewBatchFetcher(fetcher PageFetcher, config Config) *BatchFetcher {
	defaults := DefaultConfig()
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = defaults.MaxConcurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.PageSize <= 0 {
		config.PageSize = defaults.PageSize
	}

	return &BatchFetcher{
		fetcher: fetcher,
		config:  config,
	}
}

// FetchPages fetches pages 1..lastPage in parallel. Pages past the first
// empty page are dropped from the result. On error the pages fetched so far
// are returned together with the error.
func (bf *BatchFetcher) FetchPages(ctx context.Context, lastPage int) ([]PageResult, error) {
	if lastPage < 1 {
		return nil, nil
	}
	start := time.Now()

	log.Info().
		Int("pages", lastPage).
		Int("concurrency", bf.config.MaxConcurrency).
		Msg("Starting parallel page fetch")

	var (
		mu      sync.Mutex
		results = make(map[int]PageResult, lastPage)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bf.config.MaxConcurrency)

	for page := 1; page <= lastPage; page++ {
		g.Go(func() error {
			pageCtx, cancel := context.WithTimeout(gctx, bf.config.Timeout)
			defer cancel()

			offset := OffsetForPage(page, bf.config.PageSize)
			data, items, err := bf.fetcher.FetchPage(pageCtx, offset, bf.config.PageSize)
			if err != nil {
				log.Warn().
					Err(err).
					Int("page", page).
					Msg("Page fetch failed")
				return fmt.Errorf("page %d: %w", page, err)
			}

			mu.Lock()
			results[page] = PageResult{PageNumber: page, Data: data, Items: items}
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	ordered := collect(results, lastPage)

	if err != nil {
		log.Warn().
			Err(err).
			Int("fetched_pages", len(ordered)).
			Int("total_pages", lastPage).
			Msg("Batch fetch failed - returning partial results")
		return ordered, fmt.Errorf("batch fetch (partial data: %d/%d pages): %w", len(ordered), lastPage, err)
	}

	log.Info().
		Int("pages", len(ordered)).
		Int("requested", lastPage).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return ordered, nil
}

// collect orders results by page and stops at the first gap or empty page.
func collect(results map[int]PageResult, lastPage int) []PageResult {
	ordered := make([]PageResult, 0, len(results))
	for page := 1; page <= lastPage; page++ {
		r, ok := results[page]
		if !ok || r.Items == 0 {
			break
		}
		ordered = append(ordered, r)
	}
	return ordered
}
