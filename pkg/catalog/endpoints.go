package catalog

import (
	"net/url"
	"strings"
)

// APIVersion is a version segment of the catalog API.
type APIVersion string

const (
	// V1 is the only published API version.
	V1 APIVersion = "v1"

	// DefaultBaseURL is the public catalog API.
	DefaultBaseURL = "https://api.escuelajs.co/api"
)

// Endpoints builds resource URLs for one API deployment.
type Endpoints struct {
	BaseURL string
	Version APIVersion
}

// DefaultEndpoints targets the public API.
func DefaultEndpoints() Endpoints {
	return Endpoints{BaseURL: DefaultBaseURL, Version: V1}
}

// URL returns the versioned URL of endpoint.
func (e Endpoints) URL(endpoint string) string {
	base := strings.TrimRight(e.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	version := e.Version
	if version == "" {
		version = V1
	}
	return base + "/" + string(version) + "/" + strings.TrimLeft(endpoint, "/")
}

// Products is the product list endpoint.
func (e Endpoints) Products() string {
	return e.URL("products")
}

// ProductBySlug is the product lookup endpoint for slug.
func (e Endpoints) ProductBySlug(slug string) string {
	return e.URL("products/slug/" + url.PathEscape(strings.TrimSpace(slug)))
}

// Categories is the category list endpoint.
func (e Endpoints) Categories() string {
	return e.URL("categories")
}
