package main

import (
	"github.com/urfave/cli/v2"
)

// globalFlags override the config file and CATALOG_* environment.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the TOML config file",
			EnvVars: []string{"CATALOG_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "base-url",
			Usage: "Catalog API root",
		},
		&cli.StringFlag{
			Name:  "user-agent",
			Usage: "User-Agent sent upstream",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Per-request timeout",
		},
		&cli.StringFlag{
			Name:  "redis-addr",
			Usage: "Redis address; enables response caching and shared rate limit state",
		},
		&cli.StringFlag{
			Name:  "redis-password",
			Usage: "Redis password",
		},
		&cli.IntFlag{
			Name:  "redis-db",
			Usage: "Redis database number",
		},
		&cli.DurationFlag{
			Name:  "cache-ttl",
			Usage: "Freshness of responses without caching headers",
		},
		&cli.Float64Flag{
			Name:  "rate-limit",
			Usage: "Outbound requests per second (0 disables the limiter)",
		},
		&cli.IntFlag{
			Name:  "rate-burst",
			Usage: "Outbound burst size",
		},
		&cli.DurationFlag{
			Name:  "rate-max-wait",
			Usage: "Fail instead of waiting longer than this for an upstream rate limit reset (0 waits)",
		},
		&cli.IntFlag{
			Name:  "retries",
			Usage: "Retries for server and network errors",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Aliases: []string{"l"},
			Usage:   "Log level (debug, info, warn, error, off)",
		},
		&cli.BoolFlag{
			Name:  "log-pretty",
			Usage: "Human-readable log output",
		},
	}
}

// listFlags select one product listing page.
func listFlags() []cli.Flag {
	page := &cli.IntFlag{
		Name:    "page",
		Aliases: []string{"p"},
		Usage:   "Page number (1-based)",
		Value:   1,
	}
	return append([]cli.Flag{page}, filterFlags()...)
}

// filterFlags narrow the product listing.
func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "title",
			Aliases: []string{"t"},
			Usage:   "Search products by title",
		},
		&cli.IntSliceFlag{
			Name:  "category",
			Usage: "Filter by category id (repeatable)",
		},
		&cli.StringFlag{
			Name:  "price",
			Usage: "Price range as min-max, e.g. 20-50",
		},
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Print JSON instead of a table",
	}
}

func exportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "pages",
			Usage: "Number of pages to fetch",
		},
		&cli.IntFlag{
			Name:  "concurrency",
			Usage: "Parallel page requests",
			Value: 4,
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Output file (default: stdout)",
		},
	}
}

func proxyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "addr",
			Usage: "Listen address",
		},
		&cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "Serve /metrics and /health on a separate listener",
		},
	}
}

func browseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "category-id",
			Usage: "Scope the listing to one category",
		},
		&cli.StringFlag{
			Name:  "category-slug",
			Usage: "Category name shown in the header",
		},
		&cli.DurationFlag{
			Name:  "debounce",
			Usage: "Delay before the search box is applied",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "Log file (the browser owns the terminal)",
		},
	}
}
