// Package multiply provides the built-in arithmetic tool.
//
// One tool is exported via [NewTools]:
//   - "multiply_numbers": multiplies two numbers, preserving the combined
//     numeric type (integer × integer stays integer, any float operand yields
//     a float).
//
// The handler is a total function: invalid input produces an error envelope,
// never a fault. Safe for concurrent use.
package multiply

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/MrWong99/toonforge/internal/respond"
	"github.com/MrWong99/toonforge/internal/tools"
	"github.com/MrWong99/toonforge/pkg/toon"
)

// multiplyArgs is the JSON-decoded input for the "multiply_numbers" tool.
// The fields stay untyped so that non-numeric input reaches the validation
// step instead of failing JSON decoding with an opaque type error.
type multiplyArgs struct {
	// A is the first factor. Must be numeric.
	A any `json:"a"`

	// B is the second factor. Must be numeric.
	B any `json:"b"`
}

// number is a validated numeric input, either integer or float.
type number struct {
	i       int64
	f       float64
	isFloat bool
}

func (n number) value() any {
	if n.isFloat {
		return n.f
	}
	return n.i
}

// asNumber validates that v is numeric. JSON numbers arrive as [json.Number]
// (the decoder runs with UseNumber); integer literals stay integers.
func asNumber(v any) (number, bool) {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return number{i: i}, true
		}
		f, err := x.Float64()
		if err != nil {
			return number{}, false
		}
		return number{f: f, isFloat: true}, true
	case int64:
		return number{i: x}, true
	case float64:
		return number{f: x, isFloat: true}, true
	default:
		return number{}, false
	}
}

// mul multiplies two validated numbers. Integer × integer stays integer; any
// float operand widens the product to float.
func mul(a, b number) any {
	if a.isFloat || b.isFloat {
		af, bf := a.f, b.f
		if !a.isFloat {
			af = float64(a.i)
		}
		if !b.isFloat {
			bf = float64(b.i)
		}
		return af * bf
	}
	return a.i * b.i
}

// makeHandler builds the "multiply_numbers" handler. Every outcome passes
// through the response formatter; failures become error envelopes.
func makeHandler(log *slog.Logger, f *respond.Formatter) func(ctx context.Context, args string) (any, error) {
	return func(_ context.Context, args string) (any, error) {
		fail := func(reason string) (any, error) {
			log.Error("multiply tool failed", "error", reason)
			return f.Format(respond.Error("", reason, "Failed to perform multiplication"))
		}

		dec := json.NewDecoder(strings.NewReader(args))
		dec.UseNumber()
		var a multiplyArgs
		if err := dec.Decode(&a); err != nil {
			return fail(fmt.Sprintf("invalid arguments: %v", err))
		}

		na, okA := asNumber(a.A)
		nb, okB := asNumber(a.B)
		if !okA || !okB {
			return fail("Both inputs must be numbers")
		}

		result := mul(na, nb)
		av, bv := na.value(), nb.value()
		log.Info("multiply tool called", "a", av, "b", bv, "result", result)

		return f.Format(respond.Success("multiplication",
			fmt.Sprintf("Successfully multiplied %v and %v", formatNum(av), formatNum(bv)),
			respond.F("a", av),
			respond.F("b", bv),
			respond.F("result", result),
		))
	}
}

// formatNum renders a number for human-readable messages, keeping the integer
// vs float distinction visible (floats always show a decimal point).
func formatNum(v any) string {
	s, err := toon.Encode(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return s
}

// NewTools returns the arithmetic tools backed by the given logger and
// response formatter.
func NewTools(log *slog.Logger, f *respond.Formatter) []tools.Tool {
	return []tools.Tool{
		{
			Definition: tools.Definition{
				Name:        "multiply_numbers",
				Description: "Multiply two numbers together. Accepts integers or floats; the result keeps the combined numeric type. Examples: (4, 5), (3.14, 2.0), (-1, 10).",
				InputSchema: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"a": {Type: "number", Description: "First number to multiply."},
						"b": {Type: "number", Description: "Second number to multiply."},
					},
					Required: []string{"a", "b"},
				},
			},
			Handler: makeHandler(log, f),
		},
	}
}
