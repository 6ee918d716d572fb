package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/Sternrassler/catalog-client/pkg/catalog"
)

func runImage(c *cli.Context) error {
	imageURL := strings.TrimSpace(c.Args().First())
	if imageURL == "" {
		return errors.New("usage: catalog image <url> [--out FILE]")
	}

	out, err := imageOutput(c)
	if err != nil {
		return err
	}

	s, err := openSession(c, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	if out == "" {
		out = catalog.ImageFilename(imageURL)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	_, n, err := s.client.DownloadImage(c.Context, imageURL, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(out)
		return err
	}

	fmt.Fprintf(c.App.Writer, "saved %s (%d bytes)\n", out, n)
	return nil
}

// imageOutput returns the --out value. urfave/cli stops parsing flags at the
// first argument, so "image <url> --out FILE" is read from the tail.
func imageOutput(c *cli.Context) (string, error) {
	out := c.String("out")
	tail := c.Args().Tail()
	for i := 0; i < len(tail); i++ {
		arg := tail[i]
		switch {
		case arg == "--out" || arg == "-out" || arg == "-o":
			if i+1 >= len(tail) {
				return "", fmt.Errorf("flag %s needs a file argument", arg)
			}
			i++
			out = tail[i]
		case strings.HasPrefix(arg, "--out="):
			out = strings.TrimPrefix(arg, "--out=")
		case strings.HasPrefix(arg, "-o="):
			out = strings.TrimPrefix(arg, "-o=")
		default:
			return "", fmt.Errorf("unexpected argument %q", arg)
		}
	}
	return out, nil
}
