package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// Doer executes HTTP requests. *http.Client and *client.Client satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestOptions customises the outgoing request.
type RequestOptions struct {
	// Method defaults to GET.
	Method string
	Header http.Header
}

func (o RequestOptions) method() string {
	if o.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(o.Method)
}

// key is a deterministic rendering used for input identity.
func (o RequestOptions) key() string {
	parts := []string{o.method()}
	names := make([]string, 0, len(o.Header))
	for name := range o.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, name+":"+strings.Join(o.Header[name], ","))
	}
	return strings.Join(parts, "|")
}

// Input identifies one subscription target. An empty URL disables fetching.
type Input struct {
	URL     string
	Params  Params
	Options RequestOptions
}

// FullURL returns the URL with the encoded query appended.
func (in Input) FullURL() string {
	query := in.Params.Encode()
	if query == "" {
		return in.URL
	}
	return in.URL + "?" + query
}

// Identity is the value compared when deciding whether inputs changed.
func (in Input) Identity() string {
	return in.FullURL() + "#" + in.Options.key()
}

// StatusError reports a non-success HTTP status.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

// NewRequest builds the HTTP request for in. The query is escaped the way
// a browser would send it, and Accept defaults to application/json.
func NewRequest(ctx context.Context, in Input) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, in.Options.method(), in.FullURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.URL.RawQuery = escapeQuery(req.URL.RawQuery)
	for name, values := range in.Options.Header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	return req, nil
}

// escapeQuery percent-encodes the bytes a browser would encode in a query
// (controls, space, quotes, angle brackets, non-ASCII) and leaves
// separators such as '&' and '=' alone.
func escapeQuery(q string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(q); i++ {
		c := q[i]
		switch {
		case c == '%' && i+2 < len(q) && isHex(q[i+1]) && isHex(q[i+2]):
			b.WriteByte(c)
		case c <= ' ' || c >= 0x7f || c == '"' || c == '<' || c == '>' || c == '\'' || c == '`' || c == '%':
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// decode executes req and parses a JSON body into T.
func decode[T any](doer Doer, req *http.Request) (*T, error) {
	resp, err := doer.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: req.URL.String()}
	}

	var payload T
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &payload, nil
}

// Get performs a single fetch of in without subscription state. It is the
// one-shot counterpart of Resource for command-line callers.
func Get[T any](ctx context.Context, doer Doer, in Input) (*T, error) {
	req, err := NewRequest(ctx, in)
	if err != nil {
		return nil, err
	}
	return decode[T](doer, req)
}
