package cache

import (
	"net/url"
	"slices"
	"strings"
)

// KeyPrefix namespaces all cache keys in Redis.
const KeyPrefix = "catalog"

// Key identifies a cached response.
type Key struct {
	// Host distinguishes the API from image hosts; may be empty.
	Host string

	// Endpoint is the request path (e.g. "/api/v1/products").
	Endpoint string

	// Query holds the query parameters.
	Query url.Values
}

// KeyFromURL builds a key from a request URL. The raw query is split on
// '&' without unescaping, so query strings that are not valid URL encoding
// still produce a stable key.
func KeyFromURL(u *url.URL) Key {
	k := Key{Host: u.Host, Endpoint: u.Path}
	if u.RawQuery == "" {
		return k
	}
	k.Query = url.Values{}
	for _, part := range strings.Split(u.RawQuery, "&") {
		name, value, _ := strings.Cut(part, "=")
		k.Query[name] = append(k.Query[name], value)
	}
	return k
}

// String renders a deterministic Redis key:
//
//	catalog:<host>/<endpoint>:<k1>=<v1>:<k2>=<v2>
//
// Query keys are sorted; repeated values are query-escaped, sorted and
// joined by ',', so a literal ',' in a value cannot merge two keys.
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(KeyPrefix)
	b.WriteByte(':')

	path := strings.Trim(k.Endpoint, "/")
	if k.Host != "" {
		path = k.Host + "/" + path
	}
	b.WriteString(path)

	names := make([]string, 0, len(k.Query))
	for name := range k.Query {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		values := make([]string, len(k.Query[name]))
		for i, v := range k.Query[name] {
			values[i] = url.QueryEscape(v)
		}
		slices.Sort(values)
		b.WriteByte(':')
		b.WriteString(url.QueryEscape(name))
		b.WriteByte('=')
		b.WriteString(strings.Join(values, ","))
	}
	return b.String()
}
