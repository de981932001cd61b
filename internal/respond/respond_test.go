package respond

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/MrWong99/toonforge/internal/observe"
	"github.com/MrWong99/toonforge/pkg/toon"
)

func TestSuccess_FieldOrder(t *testing.T) {
	t.Parallel()
	env := Success("multiplication", "Successfully multiplied 10 and 7",
		F("a", int64(10)),
		F("b", int64(7)),
		F("result", int64(70)),
	)

	var keys []string
	for p := env.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	want := []string{"status", "operation", "a", "b", "result", "message"}
	if len(keys) != len(want) {
		t.Fatalf("envelope has keys %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d = %q, want %q", i, keys[i], want[i])
		}
	}
	if v, _ := env.Get("status"); v != "success" {
		t.Errorf("status = %v, want success", v)
	}
}

func TestError_Shapes(t *testing.T) {
	t.Parallel()

	// Without an operation tag the field is omitted entirely.
	env := Error("", "Both inputs must be numbers", "Failed to perform multiplication")
	if _, ok := env.Get("operation"); ok {
		t.Error("error envelope without operation should omit the field")
	}
	if v, _ := env.Get("status"); v != "error" {
		t.Errorf("status = %v, want error", v)
	}
	if v, _ := env.Get("error"); v != "Both inputs must be numbers" {
		t.Errorf("error = %v", v)
	}

	env = Error("get_logo", "file_not_found", "Could not find logo file")
	if v, _ := env.Get("operation"); v != "get_logo" {
		t.Errorf("operation = %v, want get_logo", v)
	}
}

func TestFormatter_Passthrough(t *testing.T) {
	t.Parallel()
	f := NewFormatter(false)
	env := Success("multiplication", "ok", F("result", int64(70)))

	out, err := f.Format(env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != any(env) {
		t.Error("disabled formatter must return the envelope unchanged")
	}
}

func TestFormatter_EncodesTOON(t *testing.T) {
	t.Parallel()
	f := NewFormatter(true)
	env := Success("multiplication", "ok", F("result", int64(70)))

	out, err := f.Format(env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, ok := out.(string)
	if !ok {
		t.Fatalf("enabled formatter returned %T, want string", out)
	}
	back, err := toon.Decode(text)
	if err != nil {
		t.Fatalf("formatter output does not decode: %v", err)
	}
	if !toon.Equal(back, env) {
		t.Errorf("decoded envelope %#v differs from original %#v", back, env)
	}
}

// The two formatter modes must be informationally equivalent: TOON output
// decodes back to exactly the envelope the passthrough mode returns.
func TestFormatter_ModesEquivalent(t *testing.T) {
	t.Parallel()
	env := Success("code_review_prompt", "Generated prompt",
		F("language", "python"),
		F("prompt", "Please review the following python code:\n\n```python\npass\n```"),
	)

	plain, err := NewFormatter(false).Format(env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	encoded, err := NewFormatter(true).Format(env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := toon.Decode(encoded.(string))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !toon.Equal(back, plain) {
		t.Errorf("modes diverge:\n  plain:   %#v\n  decoded: %#v", plain, back)
	}
}

func TestFormatter_CountsEncodes(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	metrics, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	f := NewFormatter(true, WithMetrics(metrics))
	for range 3 {
		if _, err := f.Format(Success("op", "msg")); err != nil {
			t.Fatalf("Format() error: %v", err)
		}
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, met := range sm.Metrics {
			if met.Name != "toonforge.toon.encodes" {
				continue
			}
			sum, ok := met.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatal("metric is not a sum")
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	if total != 3 {
		t.Errorf("encode count = %d, want 3", total)
	}
}
