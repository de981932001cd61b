// Package toon implements TOON (Token-Oriented Object Notation), a compact,
// indentation-based text serialization for JSON-like values. Compared to JSON
// it saves a significant share of tokens for LLM-facing payloads while staying
// human-readable; uniform sequences of mappings collapse into a tabular form
// with a single count-and-keys header.
//
// The package exposes an encode/decode pair forming a round-trip law: for
// every representable value v, [Decode]([Encode](v)) is structurally equal to
// v (see [Equal]), with integer and floating-point numbers kept distinct.
//
// # Value domain
//
// A value is one of:
//
//   - nil
//   - bool
//   - int64 (integers)
//   - float64 (floating-point numbers)
//   - string
//   - []any (ordered sequence)
//   - *orderedmap.OrderedMap[string, any] (mapping, insertion order preserved)
//
// [Encode] additionally accepts the usual Go spellings of these (int, float32,
// json.Number, map[string]any, …) and normalises them first; map[string]any
// keys are sorted since Go map iteration order is undefined. [Decode] always
// produces the canonical types above.
//
// # Wire format
//
//	status: success
//	count: 42
//	users[2]{id,name}:
//	  1,Alice
//	  2,Bob
//	note: "contains: a colon"
//
// Nesting indents by two spaces. Strings are written bare unless they would be
// ambiguous with the notation itself (delimiters, surrounding whitespace,
// reserved literals, numeric look-alikes), in which case they are quoted with
// backslash escapes. Empty mapping (a key line with no children), empty
// sequence (`key[0]:`) and null (`key: null`) all have distinct encodings.
package toon

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Map is the mapping type produced by [Decode] and accepted by [Encode].
// Insertion order is the encoding order.
type Map = orderedmap.OrderedMap[string, any]

// NewMap returns an empty ordered mapping.
func NewMap() *Map {
	return orderedmap.New[string, any]()
}

// normalize converts v into the canonical value domain, or reports an error
// for types the notation cannot represent.
func normalize(v any) (any, error) {
	switch x := v.(type) {
	case nil, bool, string:
		return x, nil
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("toon: uint64 value %d overflows int64", x)
		}
		return int64(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return nil, fmt.Errorf("toon: uint value %d overflows int64", x)
		}
		return int64(x), nil
	case float32:
		return normalize(float64(x))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("toon: cannot encode non-finite float %v", x)
		}
		return x, nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("toon: invalid number %q: %w", x.String(), err)
		}
		return f, nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		om := NewMap()
		for _, k := range keys {
			n, err := normalize(x[k])
			if err != nil {
				return nil, err
			}
			om.Set(k, n)
		}
		return om, nil
	case *Map:
		om := NewMap()
		for p := x.Oldest(); p != nil; p = p.Next() {
			n, err := normalize(p.Value)
			if err != nil {
				return nil, err
			}
			om.Set(p.Key, n)
		}
		return om, nil
	default:
		return nil, fmt.Errorf("toon: unsupported type %T", v)
	}
}

// Equal reports whether a and b are structurally equal values. Both arguments
// are normalised first, so Go-native spellings (int vs int64, map vs ordered
// map) compare as their canonical forms. Integers never equal floats, matching
// the round-trip law's numeric-type preservation.
func Equal(a, b any) bool {
	na, err := normalize(a)
	if err != nil {
		return false
	}
	nb, err := normalize(b)
	if err != nil {
		return false
	}
	return equalCanonical(na, nb)
}

func equalCanonical(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case int64:
		y, ok := b.(int64)
		return ok && x == y
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !equalCanonical(x[i], y[i]) {
				return false
			}
		}
		return true
	case *Map:
		y, ok := b.(*Map)
		if !ok || x.Len() != y.Len() {
			return false
		}
		px, py := x.Oldest(), y.Oldest()
		for px != nil {
			if px.Key != py.Key || !equalCanonical(px.Value, py.Value) {
				return false
			}
			px, py = px.Next(), py.Next()
		}
		return true
	default:
		return false
	}
}
