package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Encode serialises v into TOON notation. The result carries no trailing
// newline. Values outside the representable domain (channels, NaN, …) return
// an error; a successfully encoded value always decodes back to a structurally
// equal value.
func Encode(v any) (string, error) {
	n, err := normalize(v)
	if err != nil {
		return "", err
	}
	var e encoder
	if err := e.root(n); err != nil {
		return "", err
	}
	return strings.Join(e.lines, "\n"), nil
}

type encoder struct {
	lines []string
}

func (e *encoder) emit(indent int, s string) {
	e.lines = append(e.lines, strings.Repeat("  ", indent)+s)
}

func (e *encoder) root(v any) error {
	switch x := v.(type) {
	case *Map:
		// Root-level empty mapping is the empty document.
		return e.mapping(x, 0)
	case []any:
		return e.sequence("", x, 0)
	default:
		e.emit(0, encodeScalar(x))
		return nil
	}
}

// mapping writes one `key: …` entry per element at the given indent level.
func (e *encoder) mapping(m *Map, indent int) error {
	for p := m.Oldest(); p != nil; p = p.Next() {
		if err := e.entry(p.Key, p.Value, indent); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) entry(key string, v any, indent int) error {
	k := encodeKey(key)
	switch x := v.(type) {
	case *Map:
		// An empty mapping is a bare key line with no children.
		e.emit(indent, k+":")
		return e.mapping(x, indent+1)
	case []any:
		return e.sequence(k, x, indent)
	default:
		e.emit(indent, k+": "+encodeScalar(x))
		return nil
	}
}

// sequence writes a sequence header (with the optional key prefix) and its
// body. Scalar-only sequences inline; uniform tabular sequences use the
// count-and-keys header; everything else falls back to hyphen list items.
func (e *encoder) sequence(keyPrefix string, s []any, indent int) error {
	switch {
	case len(s) == 0:
		e.emit(indent, keyPrefix+"[0]:")
		return nil

	case allScalars(s):
		cells := make([]string, len(s))
		for i, el := range s {
			cells[i] = encodeScalar(el)
		}
		e.emit(indent, fmt.Sprintf("%s[%d]: %s", keyPrefix, len(s), strings.Join(cells, ",")))
		return nil

	default:
		if cols, ok := tabularColumns(s); ok {
			encoded := make([]string, len(cols))
			for i, c := range cols {
				encoded[i] = encodeKey(c)
			}
			e.emit(indent, fmt.Sprintf("%s[%d]{%s}:", keyPrefix, len(s), strings.Join(encoded, ",")))
			for _, el := range s {
				m := el.(*Map)
				row := make([]string, 0, len(cols))
				for p := m.Oldest(); p != nil; p = p.Next() {
					row = append(row, encodeScalar(p.Value))
				}
				e.emit(indent+1, strings.Join(row, ","))
			}
			return nil
		}

		e.emit(indent, fmt.Sprintf("%s[%d]:", keyPrefix, len(s)))
		for _, el := range s {
			if err := e.item(el, indent+1); err != nil {
				return err
			}
		}
		return nil
	}
}

// item writes one hyphen-prefixed list element.
func (e *encoder) item(v any, indent int) error {
	switch x := v.(type) {
	case *Map:
		if x.Len() == 0 {
			e.emit(indent, "-")
			return nil
		}
		first := x.Oldest()
		if isScalar(first.Value) {
			// Inline the first entry on the hyphen line; the remaining
			// entries align under it at the next indent level.
			e.emit(indent, "- "+encodeKey(first.Key)+": "+encodeScalar(first.Value))
			for p := first.Next(); p != nil; p = p.Next() {
				if err := e.entry(p.Key, p.Value, indent+1); err != nil {
					return err
				}
			}
			return nil
		}
		e.emit(indent, "-")
		return e.mapping(x, indent+1)
	case []any:
		return e.sequence("- ", x, indent)
	default:
		e.emit(indent, "- "+encodeScalar(x))
		return nil
	}
}

func allScalars(s []any) bool {
	for _, el := range s {
		if !isScalar(el) {
			return false
		}
	}
	return true
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, bool, int64, float64, string:
		return true
	}
	return false
}

// tabularColumns reports whether s is a uniform tabular sequence (every
// element a mapping with the identical key sequence and scalar-only values)
// and returns the shared column list.
func tabularColumns(s []any) ([]string, bool) {
	if len(s) == 0 {
		return nil, false
	}
	var cols []string
	for i, el := range s {
		m, ok := el.(*Map)
		if !ok || m.Len() == 0 {
			return nil, false
		}
		j := 0
		for p := m.Oldest(); p != nil; p = p.Next() {
			if !isScalar(p.Value) {
				return nil, false
			}
			if i == 0 {
				cols = append(cols, p.Key)
			} else {
				if j >= len(cols) || cols[j] != p.Key {
					return nil, false
				}
			}
			j++
		}
		if i > 0 && j != len(cols) {
			return nil, false
		}
	}
	return cols, true
}

// ── Scalar and key literals ──────────────────────────────────────────────────

var (
	bareKeyRe = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*$`)
	numericRe = regexp.MustCompile(`^[-+]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][-+]?[0-9]+)?$`)
)

func encodeKey(k string) string {
	if bareKeyRe.MatchString(k) {
		return k
	}
	return quoteString(k)
}

func encodeScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case bool:
		if x {
			return "true"
		}
		return "false"
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatFloat(x)
	case string:
		if needsQuoting(x) {
			return quoteString(x)
		}
		return x
	default:
		// normalize guarantees this never happens.
		panic(fmt.Sprintf("toon: encodeScalar on %T", v))
	}
}

// formatFloat renders f in its shortest form, forcing a decimal point (or
// exponent) so the literal decodes back to a float rather than an integer.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// needsQuoting reports whether the string s would be ambiguous with the
// notation's own syntax when written bare.
func needsQuoting(s string) bool {
	if s == "" || s == "true" || s == "false" || s == "null" || s == "-" {
		return true
	}
	if strings.TrimSpace(s) != s {
		return true
	}
	if numericRe.MatchString(s) {
		return true
	}
	if strings.ContainsAny(s, ",:\"\n\r\t[]{}#") {
		return true
	}
	if strings.HasPrefix(s, "- ") {
		return true
	}
	return false
}

// quoteString wraps s in double quotes, escaping the backslash, the quote,
// and the control characters the format recognises.
func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
