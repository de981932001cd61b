package toon

import (
	"strings"
	"testing"
)

// mapOf builds an ordered mapping from alternating key/value pairs.
func mapOf(pairs ...any) *Map {
	m := NewMap()
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i].(string), pairs[i+1])
	}
	return m
}

// ─────────────────────────────────────────────────────────────────────────────
// Scalar encoding
// ─────────────────────────────────────────────────────────────────────────────

func TestEncode_Scalars(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"null", nil, "null"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"int", 42, "42"},
		{"negative int", -7, "-7"},
		{"float", 2.5, "2.5"},
		{"whole float keeps point", 2.0, "2.0"},
		{"negative float", -0.25, "-0.25"},
		{"bare string", "hello", "hello"},
		{"string with spaces inside", "hello world", "hello world"},
		{"empty string quoted", "", `""`},
		{"numeric lookalike quoted", "42", `"42"`},
		{"reserved word quoted", "true", `"true"`},
		{"leading space quoted", " x", `" x"`},
		{"colon quoted", "a: b", `"a: b"`},
		{"comma quoted", "a,b", `"a,b"`},
		{"newline escaped", "a\nb", `"a\nb"`},
		{"quote escaped", `say "hi"`, `"say \"hi\""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.in)
			if err != nil {
				t.Fatalf("Encode(%v) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Encode(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncode_Unsupported(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		in   any
	}{
		{"channel", make(chan int)},
		{"func", func() {}},
		{"NaN", nan()},
		{"+Inf", inf()},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Encode(tt.in); err == nil {
				t.Errorf("Encode(%v) expected error, got nil", tt.in)
			}
		})
	}
}

func nan() float64 { f := 0.0; return f / f }
func inf() float64 { f := 1.0; return f / 0.0 }

// ─────────────────────────────────────────────────────────────────────────────
// Mappings and sequences
// ─────────────────────────────────────────────────────────────────────────────

func TestEncode_Mapping(t *testing.T) {
	t.Parallel()
	got, err := Encode(mapOf("success", true, "count", 42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "success: true\ncount: 42"
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestEncode_MappingInsertionOrder(t *testing.T) {
	t.Parallel()
	got, err := Encode(mapOf("z", 1, "a", 2, "m", 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "z: 1\na: 2\nm: 3"; got != want {
		t.Errorf("insertion order not preserved: got %q, want %q", got, want)
	}
}

func TestEncode_GoMapSortsKeys(t *testing.T) {
	t.Parallel()
	got, err := Encode(map[string]any{"b": 1, "a": 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "a: 2\nb: 1"; got != want {
		t.Errorf("Encode(map) = %q, want %q", got, want)
	}
}

func TestEncode_Nested(t *testing.T) {
	t.Parallel()
	v := mapOf(
		"name", "demo",
		"server", mapOf("port", 8080, "tls", false),
	)
	got, err := Encode(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := strings.Join([]string{
		"name: demo",
		"server:",
		"  port: 8080",
		"  tls: false",
	}, "\n")
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestEncode_EmptyContainers(t *testing.T) {
	t.Parallel()
	v := mapOf(
		"empty_map", NewMap(),
		"empty_seq", []any{},
		"nothing", nil,
	)
	got, err := Encode(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := strings.Join([]string{
		"empty_map:",
		"empty_seq[0]:",
		"nothing: null",
	}, "\n")
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestEncode_EmptyDocument(t *testing.T) {
	t.Parallel()
	got, err := Encode(NewMap())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("Encode(empty map) = %q, want empty document", got)
	}
}

func TestEncode_Tabular(t *testing.T) {
	t.Parallel()
	v := []any{
		mapOf("id", 1, "name", "Alice"),
		mapOf("id", 2, "name", "Bob"),
	}
	got, err := Encode(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "[2]{id,name}:\n  1,Alice\n  2,Bob"
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestEncode_TabularUnderKey(t *testing.T) {
	t.Parallel()
	v := mapOf("users", []any{
		mapOf("id", 1, "name", "Alice"),
		mapOf("id", 2, "name", "Bob"),
	})
	got, err := Encode(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "users[2]{id,name}:\n  1,Alice\n  2,Bob"
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestEncode_TabularRequiresUniformKeys(t *testing.T) {
	t.Parallel()
	// Second element has a different key set, so this falls back to list form.
	v := mapOf("rows", []any{
		mapOf("id", 1),
		mapOf("name", "Bob"),
	})
	got, err := Encode(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := strings.Join([]string{
		"rows[2]:",
		"  - id: 1",
		"  - name: Bob",
	}, "\n")
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestEncode_InlinePrimitiveSequence(t *testing.T) {
	t.Parallel()
	got, err := Encode(mapOf("tags", []any{"a", "b,c", 3}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `tags[3]: a,"b,c",3`; got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestEncode_MixedList(t *testing.T) {
	t.Parallel()
	v := mapOf("items", []any{
		int64(1),
		mapOf("a", true, "nested", mapOf("x", 1)),
		[]any{int64(1), int64(2)},
	})
	got, err := Encode(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := strings.Join([]string{
		"items[3]:",
		"  - 1",
		"  - a: true",
		"    nested:",
		"      x: 1",
		"  - [2]: 1,2",
	}, "\n")
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestEncode_EscapedNewlineInValue(t *testing.T) {
	t.Parallel()
	got, err := Encode(mapOf("sql", "SELECT *\nFROM users"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `sql: "SELECT *\nFROM users"`; got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestEncode_QuotedKey(t *testing.T) {
	t.Parallel()
	got, err := Encode(mapOf("strange key!", 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `"strange key!": 1`; got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}
