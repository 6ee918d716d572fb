package fetch

import (
	"fmt"
	"strconv"
	"strings"
)

// Param is one key/value pair of a flat query mapping.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered flat key → primitive mapping. Order is significant:
// Encode emits pairs in slice order, which makes the encoded form a stable
// request identity.
type Params []Param

// Set returns a copy of p with key set to value. An existing key keeps its
// position; a new key is appended. p itself is never modified, so a Params
// handed to a Resource can be reused safely.
func (p Params) Set(key string, value any) Params {
	out := make(Params, len(p), len(p)+1)
	copy(out, p)
	for i := range out {
		if out[i].Key == key {
			out[i].Value = value
			return out
		}
	}
	return append(out, Param{Key: key, Value: value})
}

// Delete removes key, preserving the order of the remaining pairs.
func (p Params) Delete(key string) Params {
	out := p[:0:0]
	for _, kv := range p {
		if kv.Key != key {
			out = append(out, kv)
		}
	}
	return out
}

// Get returns the value stored for key.
func (p Params) Get(key string) (any, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

// Clone returns an independent copy.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	return append(Params(nil), p...)
}

// Encode renders the mapping as key=value pairs joined by '&'. Values are
// not escaped; the upstream API takes them verbatim.
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(kv.Key)
		b.WriteByte('=')
		b.WriteString(formatValue(kv.Value))
	}
	return b.String()
}

// ParseQuery splits an encoded query back into ordered pairs. Values come
// back as strings.
func ParseQuery(query string) Params {
	query = strings.TrimPrefix(query, "?")
	if query == "" {
		return nil
	}
	var out Params
	for _, part := range strings.Split(query, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		out = append(out, Param{Key: key, Value: value})
	}
	return out
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
