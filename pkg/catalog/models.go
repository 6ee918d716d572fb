// Package catalog models the product catalog API: its resources, list
// parameters, filters and display formatting.
package catalog

import (
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/catalog-client/pkg/fetch"
	"github.com/Sternrassler/catalog-client/pkg/pagination"
)

// PageSize is the number of products shown per page.
const PageSize = 12

// DefaultLastPage is the page count presented for product listings. The
// API reports no total, so the listing exposes a fixed number of pages.
const DefaultLastPage = 6

// Category is a product category.
type Category struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	Image      string    `json:"image"`
	CreationAt time.Time `json:"creationAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Product is a catalog product.
type Product struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	Images      []string  `json:"images"`
	CreationAt  time.Time `json:"creationAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PrimaryImage returns the first image URL, or "" when there is none.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ProductListParams are the query parameters of the product list endpoint.
// Empty optional fields are omitted from the query.
type ProductListParams struct {
	Limit      int
	Offset     int
	Title      string
	CategoryID string
	PriceMin   string
	PriceMax   string
}

// NewProductListParams returns the parameters for the first page of an
// unfiltered listing, optionally scoped to a category.
func NewProductListParams(categoryID string) ProductListParams {
	return ProductListParams{
		Limit:      PageSize,
		Offset:     pagination.OffsetForPage(1, PageSize),
		CategoryID: categoryID,
	}
}

// Params renders the parameters in the order the API documents them.
func (p ProductListParams) Params() fetch.Params {
	params := fetch.Params{
		{Key: "limit", Value: p.Limit},
		{Key: "offset", Value: p.Offset},
		{Key: "title", Value: p.Title},
	}
	if p.CategoryID != "" {
		params = append(params, fetch.Param{Key: "categoryId", Value: p.CategoryID})
	}
	if p.PriceMin != "" {
		params = append(params, fetch.Param{Key: "price_min", Value: p.PriceMin})
	}
	if p.PriceMax != "" {
		params = append(params, fetch.Param{Key: "price_max", Value: p.PriceMax})
	}
	return params
}

// Page returns the 1-based page the offset points at.
func (p ProductListParams) Page() int {
	return pagination.PageForOffset(p.Offset, p.Limit)
}

// WithPage returns a copy positioned at pageNo.
func (p ProductListParams) WithPage(pageNo int) ProductListParams {
	p.Offset = pagination.OffsetForPage(pageNo, p.Limit)
	return p
}

// WithTitle returns a copy searching for title, reset to the first page.
func (p ProductListParams) WithTitle(title string) ProductListParams {
	p.Title = title
	return p.WithPage(1)
}

// PriceRanges are the price filters offered to users, as "min-max".
var PriceRanges = []string{
	"0-20",
	"20-50",
	"50-100",
	"100-200",
	"200-1000",
	"1000-100000000",
}

// WithPriceRanges applies the first selected range, or clears the price
// filter when none is selected. The listing returns to the first page.
func (p ProductListParams) WithPriceRanges(selected []string) ProductListParams {
	if len(selected) == 0 {
		p.PriceMin = ""
		p.PriceMax = ""
	} else {
		p.PriceMin, p.PriceMax, _ = strings.Cut(selected[0], "-")
	}
	return p.WithPage(1)
}

// WithCategories filters by the selected category ids, or clears the
// filter when none is selected. The listing returns to the first page.
func (p ProductListParams) WithCategories(ids []int) ProductListParams {
	p.CategoryID = JoinParam(ids)
	return p.WithPage(1)
}

// JoinParam joins values with '&' for a multi-valued parameter. It
// returns "" for no values.
func JoinParam(ids []int) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, "&")
}
