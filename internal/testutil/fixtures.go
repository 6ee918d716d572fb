package testutil

import (
	"fmt"
	"time"

	"github.com/Sternrassler/catalog-client/pkg/catalog"
)

// PNGBytes is a 1x1 transparent PNG served by the mock image endpoint.
var PNGBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

var fixtureTime = time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)

// SampleCategories returns the five categories of the public API.
func SampleCategories() []catalog.Category {
	names := []string{"Clothes", "Electronics", "Furniture", "Shoes", "Miscellaneous"}
	categories := make([]catalog.Category, len(names))
	for i, name := range names {
		categories[i] = catalog.Category{
			ID:         i + 1,
			Name:       name,
			Slug:       toSlug(name),
			Image:      fmt.Sprintf("https://i.imgur.com/category-%d.jpeg", i+1),
			CreationAt: fixtureTime,
			UpdatedAt:  fixtureTime,
		}
	}
	return categories
}

// SampleProducts returns n products spread round-robin over the sample
// categories. Product i (1-based) costs i*10 and is titled "Product i";
// every third product is a "Classic Shirt i".
func SampleProducts(n int) []catalog.Product {
	categories := SampleCategories()
	products := make([]catalog.Product, n)
	for i := range n {
		id := i + 1
		title := fmt.Sprintf("Product %d", id)
		if id%3 == 0 {
			title = fmt.Sprintf("Classic Shirt %d", id)
		}
		products[i] = catalog.Product{
			ID:          id,
			Title:       title,
			Slug:        toSlug(title),
			Price:       float64(id * 10),
			Description: "A sample product for tests.",
			Category:    categories[i%len(categories)],
			Images:      []string{fmt.Sprintf("https://i.imgur.com/product-%d.jpeg", id)},
			CreationAt:  fixtureTime.Add(time.Duration(id) * time.Hour),
			UpdatedAt:   fixtureTime.Add(time.Duration(id) * time.Hour),
		}
	}
	return products
}

func toSlug(s string) string {
	b := []byte(s)
	for i, c := range b {
		switch {
		case c == ' ':
			b[i] = '-'
		case 'A' <= c && c <= 'Z':
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
