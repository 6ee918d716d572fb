package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/Sternrassler/catalog-client/internal/tui"
	"github.com/Sternrassler/catalog-client/pkg/logging"
)

func runBrowse(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logFile := cfg.LogFile
	if c.IsSet("log-file") {
		logFile = c.String("log-file")
	}

	out, err := logging.OpenFile(logFile)
	if err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	defer out.Close()

	s, err := openSession(c, out)
	if err != nil {
		return err
	}
	defer s.Close()

	debounce := s.cfg.SearchDebounce
	if c.IsSet("debounce") {
		debounce = c.Duration("debounce")
	}

	s.logger.Info().Str("base_url", s.cfg.BaseURL).Msg("Starting browser")
	return tui.Run(tui.Options{
		Context:        c.Context,
		Source:         s.client,
		CategoryID:     c.String("category-id"),
		CategorySlug:   c.String("category-slug"),
		SearchDebounce: debounce,
	})
}
