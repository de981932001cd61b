// Package respond defines the status envelope every ToonForge tool returns
// and the [Formatter] that decides its wire representation.
//
// An envelope is an ordered mapping with a `status` field of "success" or
// "error". Success envelopes carry an `operation` tag, operation-specific
// fields, and a human-readable `message`. Error envelopes carry a
// machine-readable `error` reason and a human-readable `message`. Tool
// handlers always produce exactly one envelope per call; failures are folded
// into the error shape instead of escaping to the caller.
package respond

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"

	"github.com/MrWong99/toonforge/internal/observe"
	"github.com/MrWong99/toonforge/pkg/toon"
)

// Field is one ordered key/value pair of a success envelope.
type Field struct {
	Key   string
	Value any
}

// F constructs a [Field]. Purely a literal shorthand for envelope builders.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Success builds a success envelope. Field order is fixed: status, operation,
// the given fields in order, message last.
func Success(operation, message string, fields ...Field) *toon.Map {
	m := toon.NewMap()
	m.Set("status", "success")
	m.Set("operation", operation)
	for _, f := range fields {
		m.Set(f.Key, f.Value)
	}
	m.Set("message", message)
	return m
}

// Error builds an error envelope. The operation tag is optional; reason is
// the machine-readable error kind or cause, message the human-readable
// summary. Field order is fixed: status, operation (when given), error,
// message.
func Error(operation, reason, message string) *toon.Map {
	m := toon.NewMap()
	m.Set("status", "error")
	if operation != "" {
		m.Set("operation", operation)
	}
	m.Set("error", reason)
	m.Set("message", message)
	return m
}

// Formatter is the single policy point deciding whether envelopes cross the
// wire as TOON text or as structured values. Toggling the flag changes only
// the representation, never the envelope's logical content.
type Formatter struct {
	enabled bool
	metrics *observe.Metrics
}

// Option configures a [Formatter].
type Option func(*Formatter)

// WithMetrics makes the Formatter count encode operations on
// [observe.Metrics.ToonEncodes].
func WithMetrics(m *observe.Metrics) Option {
	return func(f *Formatter) {
		f.metrics = m
	}
}

// NewFormatter returns a Formatter that encodes to TOON text when enableTOON
// is true and passes envelopes through unchanged otherwise.
func NewFormatter(enableTOON bool, opts ...Option) *Formatter {
	f := &Formatter{enabled: enableTOON}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Enabled reports whether TOON output is active.
func (f *Formatter) Enabled() bool {
	return f.enabled
}

// Format applies the configured representation to an envelope. With TOON
// enabled the result is a string in TOON notation; otherwise the envelope is
// returned as-is and the transport layer handles any further conversion.
func (f *Formatter) Format(envelope any) (any, error) {
	if !f.enabled {
		return envelope, nil
	}
	text, err := toon.Encode(envelope)
	f.countEncode(err)
	if err != nil {
		return nil, fmt.Errorf("respond: failed to encode envelope: %w", err)
	}
	return text, nil
}

func (f *Formatter) countEncode(err error) {
	if f.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	f.metrics.ToonEncodes.Add(context.Background(), 1,
		metric.WithAttributes(observe.Attr("status", status)))
}
