package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v2"

	"github.com/Sternrassler/catalog-client/pkg/catalog"
	"github.com/Sternrassler/catalog-client/pkg/client"
)

func runProducts(c *cli.Context) error {
	s, err := openSession(c, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	params, err := listParams(c)
	if err != nil {
		return err
	}

	products, err := s.client.ListProducts(c.Context, params)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return writeJSON(c.App.Writer, products)
	}
	if len(products) == 0 {
		fmt.Fprintln(c.App.Writer, "No data found!")
		return nil
	}

	rows := make([][]string, len(products))
	for i, p := range products {
		rows[i] = []string{
			strconv.Itoa(p.ID),
			p.Title,
			catalog.FormatPrice(p.Price),
			p.Category.Name,
			catalog.FormatDate(p.CreationAt, catalog.DateOptions{ShowTime: true}),
		}
	}
	fmt.Fprintln(c.App.Writer, renderTable([]string{"ID", "Name", "Price", "Category", "Published At"}, rows))
	fmt.Fprintf(c.App.Writer, "page %d\n", params.Page())
	return nil
}

func runProduct(c *cli.Context) error {
	slug := strings.TrimSpace(c.Args().First())
	if slug == "" {
		return errors.New("usage: catalog product <slug>")
	}

	s, err := openSession(c, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	product, err := s.client.ProductBySlug(c.Context, slug)
	if client.IsNotFound(err) {
		return fmt.Errorf("product %q not found", slug)
	}
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return writeJSON(c.App.Writer, product)
	}

	w := c.App.Writer
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(product.Title))
	fmt.Fprintf(w, "Category:  %s\n", product.Category.Name)
	fmt.Fprintf(w, "Price:     %s\n", catalog.FormatPrice(product.Price))
	fmt.Fprintf(w, "Published: %s (%s)\n",
		catalog.FormatDate(product.CreationAt, catalog.DateOptions{ShowTime: true}),
		catalog.FormatRelativeTime(product.CreationAt, time.Now()))
	fmt.Fprintln(w)
	fmt.Fprintln(w, product.Description)
	for _, img := range product.Images {
		fmt.Fprintf(w, "Image:     %s\n", catalog.ValidImageURL(img))
	}
	return nil
}

func runCategories(c *cli.Context) error {
	s, err := openSession(c, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	categories, err := s.client.Categories(c.Context)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return writeJSON(c.App.Writer, categories)
	}

	rows := make([][]string, len(categories))
	for i, cat := range categories {
		rows[i] = []string{strconv.Itoa(cat.ID), cat.Name, cat.Slug}
	}
	fmt.Fprintln(c.App.Writer, renderTable([]string{"ID", "Name", "Slug"}, rows))
	return nil
}

// listParams builds the parameters of the page selected by the list flags.
func listParams(c *cli.Context) (catalog.ProductListParams, error) {
	page := c.Int("page")
	if page < 1 {
		return catalog.ProductListParams{}, fmt.Errorf("page must be >= 1 (got %d)", page)
	}
	params, err := filterParams(c)
	if err != nil {
		return catalog.ProductListParams{}, err
	}
	return params.WithPage(page), nil
}

// filterParams builds first-page parameters from the filter flags.
func filterParams(c *cli.Context) (catalog.ProductListParams, error) {
	params := catalog.NewProductListParams("")
	if title := c.String("title"); title != "" {
		params = params.WithTitle(title)
	}
	if ids := c.IntSlice("category"); len(ids) > 0 {
		params = params.WithCategories(ids)
	}
	if price := c.String("price"); price != "" {
		lo, hi, ok := strings.Cut(price, "-")
		if !ok || !isNumber(lo) || !isNumber(hi) {
			return catalog.ProductListParams{}, fmt.Errorf("invalid price range %q (want min-max)", price)
		}
		params = params.WithPriceRanges([]string{price})
	}
	return params, nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func renderTable(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		Render()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
