package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Sternrassler/catalog-client/pkg/catalog"
	"github.com/Sternrassler/catalog-client/pkg/pagination"
)

func runExport(c *cli.Context) error {
	s, err := openSession(c, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	params, err := filterParams(c)
	if err != nil {
		return err
	}

	pages := c.Int("pages")
	if pages <= 0 {
		pages = catalog.DefaultLastPage
	}

	fetcher := pagination.NewBatchFetcher(s.client.ProductPages(params), pagination.Config{
		MaxConcurrency: c.Int("concurrency"),
		Timeout:        s.cfg.Timeout,
		PageSize:       catalog.PageSize,
	})
	results, err := fetcher.FetchPages(c.Context, pages)
	if err != nil {
		return err
	}

	products, err := mergePages(results)
	if err != nil {
		return err
	}

	var w io.Writer = c.App.Writer
	if out := c.String("out"); out != "" && out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := writeJSON(w, products); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	s.logger.Info().
		Int("pages", len(results)).
		Int("products", len(products)).
		Msg("Export complete")
	return nil
}

// mergePages concatenates the JSON arrays of consecutive pages.
func mergePages(results []pagination.PageResult) ([]json.RawMessage, error) {
	products := make([]json.RawMessage, 0, len(results)*catalog.PageSize)
	for _, r := range results {
		var page []json.RawMessage
		if err := json.Unmarshal(r.Data, &page); err != nil {
			return nil, fmt.Errorf("decode page %d: %w", r.PageNumber, err)
		}
		products = append(products, page...)
	}
	return products, nil
}
