package cache

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// BuildKey derives a deterministic cache key from a query prefix and its
// parameters.
//
// Format: <prefix> when params is nil, otherwise <prefix>:<canonical JSON>,
// where object keys are sorted ascending at every level. Parameter sets with
// the same pairs produce the same key regardless of construction order.
// Callers are expected to drop nil values first; filter.Sanitize does.
func BuildKey(prefix string, params map[string]any) string {
	if params == nil {
		return prefix
	}
	canonical, err := canonicalize(params)
	if err != nil {
		canonical = []byte(fallbackRender(params))
	}
	return prefix + ":" + string(canonical)
}

// Prefix returns the query prefix of a key built by BuildKey.
func Prefix(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}

func canonicalize(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return []byte("null"), nil
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := []byte{'{'}
	for i, k := range keys {
		if i > 0 {
			out = append(out, ',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		out = append(out, keyBytes...)
		out = append(out, ':')

		valBytes, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		out = append(out, valBytes...)
	}
	return append(out, '}'), nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	out := []byte{'['}
	for i, v := range s {
		if i > 0 {
			out = append(out, ',')
		}
		valBytes, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		out = append(out, valBytes...)
	}
	return append(out, ']'), nil
}

// fallbackRender keeps BuildKey total for values encoding/json rejects
// (channels, funcs, NaN).
func fallbackRender(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%q:%v", k, m[k])
	}
	b.WriteByte('}')
	return b.String()
}
