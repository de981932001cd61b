package logo

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/MrWong99/toonforge/internal/respond"
	"github.com/MrWong99/toonforge/pkg/toon"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func call(t *testing.T, assetsDir string) *toon.Map {
	t.Helper()
	ts := NewTools(testLogger(), respond.NewFormatter(false), assetsDir)
	out, err := ts[0].Handler(context.Background(), "{}")
	if err != nil {
		t.Fatalf("Handler unexpected error: %v", err)
	}
	env, ok := out.(*toon.Map)
	if !ok {
		t.Fatalf("Handler returned %T, want *toon.Map", out)
	}
	return env
}

func field(t *testing.T, env *toon.Map, key string) any {
	t.Helper()
	v, ok := env.Get(key)
	if !ok {
		t.Fatalf("envelope missing field %q", key)
	}
	return v
}

// ─────────────────────────────────────────────────────────────────────────────
// Success path
// ─────────────────────────────────────────────────────────────────────────────

func TestLogo_Success(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	content := []byte("fake_png_data")
	if err := os.WriteFile(filepath.Join(dir, FileName), content, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	env := call(t, dir)
	if got := field(t, env, "status"); got != "success" {
		t.Fatalf("status = %v, want success", got)
	}
	if got := field(t, env, "operation"); got != "get_logo" {
		t.Errorf("operation = %v, want get_logo", got)
	}
	if got := field(t, env, "mimeType"); got != "image/png" {
		t.Errorf("mimeType = %v, want image/png", got)
	}
	if got := field(t, env, "size_bytes"); !toon.Equal(got, int64(len(content))) {
		t.Errorf("size_bytes = %v, want %d", got, len(content))
	}

	data, _ := field(t, env, "data").(string)
	if data == "" {
		t.Fatal("data is empty")
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		t.Fatalf("data is not valid base64: %v", err)
	}
	if string(decoded) != string(content) {
		t.Errorf("decoded data = %q, want %q", decoded, content)
	}

	field(t, env, "name")
	field(t, env, "description")
}

// ─────────────────────────────────────────────────────────────────────────────
// Resource errors map to distinct kinds
// ─────────────────────────────────────────────────────────────────────────────

func TestLogo_FileNotFound(t *testing.T) {
	t.Parallel()
	env := call(t, t.TempDir())

	if got := field(t, env, "status"); got != "error" {
		t.Fatalf("status = %v, want error", got)
	}
	if got := field(t, env, "operation"); got != "get_logo" {
		t.Errorf("operation = %v, want get_logo", got)
	}
	if got := field(t, env, "error"); got != "file_not_found" {
		t.Errorf("error = %v, want file_not_found", got)
	}
	msg, _ := field(t, env, "message").(string)
	if !strings.Contains(msg, "Could not find logo file") {
		t.Errorf("message = %q, want it to mention the missing file", msg)
	}
}

func TestLogo_PermissionDenied(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced here")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("x"), 0o000); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	env := call(t, dir)
	if got := field(t, env, "status"); got != "error" {
		t.Fatalf("status = %v, want error", got)
	}
	if got := field(t, env, "error"); got != "permission_denied" {
		t.Errorf("error = %v, want permission_denied", got)
	}
	msg, _ := field(t, env, "message").(string)
	if !strings.Contains(msg, "Permission denied reading logo file") {
		t.Errorf("message = %q, want the permission message", msg)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Formatter integration
// ─────────────────────────────────────────────────────────────────────────────

func TestLogo_TOONModeEquivalent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("png bytes"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	plain := call(t, dir)
	ts := NewTools(testLogger(), respond.NewFormatter(true), dir)
	out, err := ts[0].Handler(context.Background(), "{}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := toon.Decode(out.(string))
	if err != nil {
		t.Fatalf("TOON output does not decode: %v", err)
	}
	if !toon.Equal(back, plain) {
		t.Errorf("modes diverge:\n  plain:   %#v\n  decoded: %#v", plain, back)
	}
}
