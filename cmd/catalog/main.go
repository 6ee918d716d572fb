// Command catalog queries the product catalog API from the terminal, runs a
// caching proxy in front of it and hosts the interactive browser.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "catalog",
		Usage: "Browse and export the product catalog",
		Flags: globalFlags(),
		Commands: []*cli.Command{
			{
				Name:      "products",
				Usage:     "List one page of products",
				Flags:     append(listFlags(), jsonFlag()),
				Action:    runProducts,
				ArgsUsage: " ",
			},
			{
				Name:      "product",
				Usage:     "Show a single product",
				ArgsUsage: "<slug>",
				Flags:     []cli.Flag{jsonFlag()},
				Action:    runProduct,
			},
			{
				Name:   "categories",
				Usage:  "List all categories",
				Flags:  []cli.Flag{jsonFlag()},
				Action: runCategories,
			},
			{
				Name:   "export",
				Usage:  "Fetch several listing pages concurrently and write them as one JSON array",
				Flags:  append(filterFlags(), exportFlags()...),
				Action: runExport,
			},
			{
				Name:      "image",
				Usage:     "Download a product image",
				ArgsUsage: "<url> [--out FILE]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output file (default: derived from the URL)",
					},
				},
				Action: runImage,
			},
			{
				Name:   "proxy",
				Usage:  "Serve a caching proxy of the catalog API with /health, /ready and /metrics",
				Flags:  proxyFlags(),
				Action: runProxy,
			},
			{
				Name:   "browse",
				Usage:  "Open the interactive product browser",
				Flags:  browseFlags(),
				Action: runBrowse,
			},
		},
	}
}
