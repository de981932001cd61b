package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DecodeError describes a malformed TOON document. Line numbers are 1-based
// and refer to the offending line of the input.
type DecodeError struct {
	Line int
	Msg  string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("toon: line %d: %s", e.Line, e.Msg)
}

func errAt(line int, format string, args ...any) error {
	return &DecodeError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// Decode parses TOON notation back into its canonical value form (see the
// package documentation for the value domain). Malformed input such as
// inconsistent indentation, tabular row/column mismatches, or unterminated
// quotes fails with a [DecodeError] identifying the offending line; no input
// is ever silently dropped or truncated.
func Decode(text string) (any, error) {
	lines, err := splitLines(text)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return NewMap(), nil
	}

	p := &parser{lines: lines}
	first := lines[0]
	if first.level != 0 {
		return nil, errAt(first.no, "unexpected indentation at document start")
	}

	var v any
	switch {
	case strings.HasPrefix(first.text, "["):
		sh, ok := parseSeqSuffix(first.text)
		if !ok {
			return nil, errAt(first.no, "malformed sequence header %q", first.text)
		}
		p.pos++
		v, err = p.sequenceBody(sh, first.no, 0)

	default:
		if _, ok := parseHead(first.text); ok {
			v, err = p.mapping(0)
		} else {
			p.pos++
			v, err = parseScalar(first.text, first.no)
		}
	}
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.lines) {
		return nil, errAt(p.lines[p.pos].no, "unexpected content after document end")
	}
	return v, nil
}

// ── Line handling ────────────────────────────────────────────────────────────

type srcLine struct {
	no    int // 1-based line number in the input
	level int // indentation depth (two spaces per level)
	text  string
}

func splitLines(text string) ([]srcLine, error) {
	if text == "" {
		return nil, nil
	}
	raw := strings.Split(text, "\n")
	lines := make([]srcLine, 0, len(raw))
	for i, l := range raw {
		if strings.TrimSpace(l) == "" {
			continue
		}
		indent := 0
		for indent < len(l) && l[indent] == ' ' {
			indent++
		}
		if indent < len(l) && l[indent] == '\t' {
			return nil, errAt(i+1, "tab character in indentation")
		}
		if indent%2 != 0 {
			return nil, errAt(i+1, "indentation of %d spaces is not a multiple of two", indent)
		}
		lines = append(lines, srcLine{no: i + 1, level: indent / 2, text: l[indent:]})
	}
	return lines, nil
}

type parser struct {
	lines []srcLine
	pos   int
}

func (p *parser) peek() (srcLine, bool) {
	if p.pos >= len(p.lines) {
		return srcLine{}, false
	}
	return p.lines[p.pos], true
}

// ── Mappings ─────────────────────────────────────────────────────────────────

func (p *parser) mapping(level int) (*Map, error) {
	m := NewMap()
	for {
		ln, ok := p.peek()
		if !ok || ln.level < level {
			return m, nil
		}
		if ln.level > level {
			return nil, errAt(ln.no, "unexpected indentation")
		}
		head, ok := parseHead(ln.text)
		if !ok {
			return nil, errAt(ln.no, "expected a key: value entry, got %q", ln.text)
		}
		if _, dup := m.Get(head.key); dup {
			return nil, errAt(ln.no, "duplicate key %q", head.key)
		}
		p.pos++
		v, err := p.entryValue(head, ln, level)
		if err != nil {
			return nil, err
		}
		m.Set(head.key, v)
	}
}

func (p *parser) entryValue(head entryHead, ln srcLine, level int) (any, error) {
	if head.seq != nil {
		return p.sequenceBody(*head.seq, ln.no, level)
	}
	if head.hasRest {
		return parseScalar(head.rest, ln.no)
	}
	// A bare `key:` line: nested mapping when children follow, else empty.
	if next, ok := p.peek(); ok && next.level > level {
		if next.level != level+1 {
			return nil, errAt(next.no, "unexpected indentation")
		}
		return p.mapping(level + 1)
	}
	return NewMap(), nil
}

// ── Sequences ────────────────────────────────────────────────────────────────

// seqHead is the parsed `[N]` / `[N]{cols}` suffix of a sequence header,
// including anything inlined after the colon.
type seqHead struct {
	count   int
	cols    []string // nil unless the tabular form was used
	rest    string
	hasRest bool
}

// sequenceBody parses the body of a sequence whose header line (at the given
// level) has already been consumed.
func (p *parser) sequenceBody(sh seqHead, headLine, level int) (any, error) {
	switch {
	case sh.hasRest:
		if sh.cols != nil {
			return nil, errAt(headLine, "tabular sequence cannot carry inline values")
		}
		cells, err := splitFields(sh.rest, headLine)
		if err != nil {
			return nil, err
		}
		if len(cells) != sh.count {
			return nil, errAt(headLine, "inline sequence has %d values, header declares %d", len(cells), sh.count)
		}
		out := make([]any, len(cells))
		for i, c := range cells {
			v, err := parseScalar(c, headLine)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case sh.cols != nil:
		return p.tabularRows(sh, headLine, level)

	case sh.count == 0:
		if next, ok := p.peek(); ok && next.level > level {
			return nil, errAt(next.no, "unexpected content under empty sequence")
		}
		return []any{}, nil

	default:
		out := make([]any, 0, sh.count)
		for i := 0; i < sh.count; i++ {
			v, err := p.item(level + 1)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		if next, ok := p.peek(); ok && next.level > level {
			return nil, errAt(next.no, "sequence has more items than its header declares (%d)", sh.count)
		}
		return out, nil
	}
}

func (p *parser) tabularRows(sh seqHead, headLine, level int) (any, error) {
	out := make([]any, 0, sh.count)
	for i := 0; i < sh.count; i++ {
		ln, ok := p.peek()
		if !ok || ln.level <= level {
			return nil, errAt(headLine, "tabular sequence declares %d rows, found %d", sh.count, i)
		}
		if ln.level != level+1 {
			return nil, errAt(ln.no, "unexpected indentation in tabular row")
		}
		p.pos++
		cells, err := splitFields(ln.text, ln.no)
		if err != nil {
			return nil, err
		}
		if len(cells) != len(sh.cols) {
			return nil, errAt(ln.no, "tabular row has %d values, header declares %d columns", len(cells), len(sh.cols))
		}
		m := NewMap()
		for j, c := range cells {
			v, err := parseScalar(c, ln.no)
			if err != nil {
				return nil, err
			}
			m.Set(sh.cols[j], v)
		}
		out = append(out, m)
	}
	if next, ok := p.peek(); ok && next.level > level {
		return nil, errAt(next.no, "tabular sequence has more rows than its header declares (%d)", sh.count)
	}
	return out, nil
}

// item parses one hyphen-prefixed list element at the given level.
func (p *parser) item(level int) (any, error) {
	ln, ok := p.peek()
	if !ok || ln.level < level || !strings.HasPrefix(ln.text, "-") {
		no := 0
		if ok {
			no = ln.no
		} else if len(p.lines) > 0 {
			no = p.lines[len(p.lines)-1].no
		}
		return nil, errAt(no, "expected a list item")
	}
	if ln.level != level {
		return nil, errAt(ln.no, "unexpected indentation in list item")
	}

	if ln.text == "-" {
		// Mapping item: entries follow indented, or the mapping is empty.
		p.pos++
		if next, ok := p.peek(); ok && next.level > level {
			if next.level != level+1 {
				return nil, errAt(next.no, "unexpected indentation")
			}
			return p.mapping(level + 1)
		}
		return NewMap(), nil
	}
	if !strings.HasPrefix(ln.text, "- ") {
		return nil, errAt(ln.no, "malformed list item %q", ln.text)
	}
	rest := ln.text[2:]

	if strings.HasPrefix(rest, "[") {
		sh, ok := parseSeqSuffix(rest)
		if !ok {
			return nil, errAt(ln.no, "malformed sequence header %q", rest)
		}
		p.pos++
		return p.sequenceBody(sh, ln.no, level)
	}

	if _, ok := parseHead(rest); ok {
		// Mapping item with its first entry inlined after the hyphen. The
		// inlined entry sits at the same column as the continuation entries,
		// so reparse it as a line one level deeper.
		p.lines[p.pos] = srcLine{no: ln.no, level: level + 1, text: rest}
		return p.mapping(level + 1)
	}

	p.pos++
	return parseScalar(rest, ln.no)
}

// ── Entry heads ──────────────────────────────────────────────────────────────

type entryHead struct {
	key     string
	seq     *seqHead // non-nil for `key[N]…:` forms
	rest    string
	hasRest bool
}

// parseHead attempts to parse s as a mapping entry line: a bare or quoted key,
// an optional sequence suffix, and a colon. Reports ok=false when s is not
// entry-shaped (a scalar, a tabular row, …).
func parseHead(s string) (entryHead, bool) {
	var key, tail string
	if strings.HasPrefix(s, `"`) {
		k, rest, err := unquotePrefix(s)
		if err != nil {
			return entryHead{}, false
		}
		key, tail = k, rest
	} else {
		i := 0
		for i < len(s) && isBareKeyByte(s[i]) {
			i++
		}
		if i == 0 {
			return entryHead{}, false
		}
		key, tail = s[:i], s[i:]
	}

	if strings.HasPrefix(tail, "[") {
		sh, ok := parseSeqSuffix(tail)
		if !ok {
			return entryHead{}, false
		}
		return entryHead{key: key, seq: &sh}, true
	}

	rest, hasRest, ok := parseColonRest(tail)
	if !ok {
		return entryHead{}, false
	}
	return entryHead{key: key, rest: rest, hasRest: hasRest}, true
}

// parseSeqSuffix parses the `[N]` or `[N]{c1,c2}` suffix (starting at the
// opening bracket) followed by the colon and optional inline values.
func parseSeqSuffix(s string) (seqHead, bool) {
	if !strings.HasPrefix(s, "[") {
		return seqHead{}, false
	}
	rb := strings.IndexByte(s, ']')
	if rb < 0 {
		return seqHead{}, false
	}
	count, err := strconv.Atoi(s[1:rb])
	if err != nil || count < 0 {
		return seqHead{}, false
	}
	tail := s[rb+1:]

	var cols []string
	if strings.HasPrefix(tail, "{") {
		end := strings.IndexByte(tail, '}')
		if end < 0 {
			return seqHead{}, false
		}
		raw, err := splitFields(tail[1:end], 0)
		if err != nil || len(raw) == 0 {
			return seqHead{}, false
		}
		cols = make([]string, len(raw))
		for i, c := range raw {
			if strings.HasPrefix(c, `"`) {
				k, rest, err := unquotePrefix(c)
				if err != nil || rest != "" {
					return seqHead{}, false
				}
				cols[i] = k
			} else {
				cols[i] = c
			}
		}
		tail = tail[end+1:]
	}

	rest, hasRest, ok := parseColonRest(tail)
	if !ok {
		return seqHead{}, false
	}
	return seqHead{count: count, cols: cols, rest: rest, hasRest: hasRest}, true
}

// parseColonRest consumes the `:` terminating a head and returns any inline
// value after it.
func parseColonRest(tail string) (rest string, hasRest, ok bool) {
	switch {
	case tail == ":":
		return "", false, true
	case strings.HasPrefix(tail, ": "):
		return tail[2:], true, true
	default:
		return "", false, false
	}
}

func isBareKeyByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '_', b == '.', b == '-':
		return true
	}
	return false
}

// ── Scalars ──────────────────────────────────────────────────────────────────

var intRe = regexp.MustCompile(`^-?[0-9]+$`)

// parseScalar decodes one scalar literal. Numeric type (integer vs float) is
// reconstructed from the literal form: no decimal point or exponent means
// integer.
func parseScalar(s string, lineNo int) (any, error) {
	switch {
	case s == "":
		return nil, errAt(lineNo, "missing value")
	case strings.HasPrefix(s, `"`):
		v, rest, err := unquotePrefix(s)
		if err != nil {
			return nil, errAt(lineNo, "%s", err)
		}
		if rest != "" {
			return nil, errAt(lineNo, "unexpected characters after closing quote: %q", rest)
		}
		return v, nil
	case s == "null":
		return nil, nil
	case s == "true":
		return true, nil
	case s == "false":
		return false, nil
	case intRe.MatchString(s):
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		// Integer literal too large for int64: widen to float.
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errAt(lineNo, "malformed number %q", s)
		}
		return f, nil
	case numericRe.MatchString(s):
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errAt(lineNo, "malformed number %q", s)
		}
		return f, nil
	default:
		return s, nil
	}
}

// unquotePrefix decodes a leading double-quoted string and returns the
// remainder of the input after the closing quote.
func unquotePrefix(s string) (string, string, error) {
	if !strings.HasPrefix(s, `"`) {
		return "", "", fmt.Errorf("not a quoted string")
	}
	var b strings.Builder
	i := 1
	for i < len(s) {
		c := s[i]
		switch c {
		case '"':
			return b.String(), s[i+1:], nil
		case '\\':
			if i+1 >= len(s) {
				return "", "", fmt.Errorf("unterminated escape sequence")
			}
			switch s[i+1] {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			default:
				return "", "", fmt.Errorf("unknown escape sequence \\%c", s[i+1])
			}
			i += 2
		default:
			b.WriteByte(c)
			i++
		}
	}
	return "", "", fmt.Errorf("unterminated quoted string")
}

// splitFields splits a comma-joined cell list, honouring quoted cells that may
// contain embedded commas. Cells are trimmed of surrounding spaces.
func splitFields(s string, lineNo int) ([]string, error) {
	var fields []string
	var b strings.Builder
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote && c == '\\' && i+1 < len(s):
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
		case c == '"':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == ',' && !inQuote:
			fields = append(fields, strings.TrimSpace(b.String()))
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	if inQuote {
		return nil, errAt(lineNo, "unterminated quote")
	}
	fields = append(fields, strings.TrimSpace(b.String()))
	return fields, nil
}
