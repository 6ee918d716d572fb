package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Sternrassler/catalog-client/pkg/catalog"
	"github.com/Sternrassler/catalog-client/pkg/fetch"
	"github.com/Sternrassler/catalog-client/pkg/pagination"
)

// ProductsInput is the fetch input of one product listing page.
func (c *Client) ProductsInput(params catalog.ProductListParams) fetch.Input {
	return fetch.Input{URL: c.endpoints.Products(), Params: params.Params()}
}

// ProductInput is the fetch input of a single product.
func (c *Client) ProductInput(slug string) fetch.Input {
	return fetch.Input{URL: c.endpoints.ProductBySlug(slug)}
}

// CategoriesInput is the fetch input of the category list.
func (c *Client) CategoriesInput() fetch.Input {
	return fetch.Input{URL: c.endpoints.Categories()}
}

// ListProducts fetches one page of products.
func (c *Client) ListProducts(ctx context.Context, params catalog.ProductListParams) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := c.getJSON(ctx, c.ProductsInput(params), &products); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// ProductBySlug fetches a single product. A missing product yields an
// error for which IsNotFound reports true.
func (c *Client) ProductBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	var product catalog.Product
	if err := c.getJSON(ctx, c.ProductInput(slug), &product); err != nil {
		return nil, fmt.Errorf("get product %q: %w", slug, err)
	}
	return &product, nil
}

// Categories fetches all categories.
func (c *Client) Categories(ctx context.Context) ([]catalog.Category, error) {
	var categories []catalog.Category
	if err := c.getJSON(ctx, c.CategoriesInput(), &categories); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// ProductPages adapts the product listing to a pagination.PageFetcher.
// Each page carries the raw JSON array and its product count.
func (c *Client) ProductPages(params catalog.ProductListParams) pagination.PageFetcher {
	return pagination.PageFetcherFunc(func(ctx context.Context, offset, limit int) ([]byte, int, error) {
		p := params
		p.Offset, p.Limit = offset, limit

		var page []json.RawMessage
		if err := c.getJSON(ctx, c.ProductsInput(p), &page); err != nil {
			return nil, 0, err
		}
		data, err := json.Marshal(page)
		if err != nil {
			return nil, 0, fmt.Errorf("encode page: %w", err)
		}
		return data, len(page), nil
	})
}

// DownloadImage streams the image at imageURL into w and returns the
// suggested filename and the number of bytes written.
func (c *Client) DownloadImage(ctx context.Context, imageURL string, w io.Writer) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := c.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("download image: %w", newAPIError(resp))
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return "", n, fmt.Errorf("write image: %w", err)
	}
	return catalog.ImageFilename(imageURL), n, nil
}

// getJSON requests in and decodes a JSON body into out. Non-2xx responses
// become *APIError.
func (c *Client) getJSON(ctx context.Context, in fetch.Input, out any) error {
	req, err := fetch.NewRequest(ctx, in)
	if err != nil {
		return err
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
