package config_test

import (
	"strings"
	"testing"

	"github.com/MrWong99/toonforge/internal/config"
)

func TestLoadFromReader_Valid(t *testing.T) {
	yaml := `
server:
  log_level: debug
  http_addr: ":9090"
format:
  enable_toon: true
assets:
  dir: /opt/toonforge/assets
tools:
  enabled:
    - multiply_numbers
    - get_logo
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.LogLevel != config.LogDebug {
		t.Errorf("log_level = %q, want debug", cfg.Server.LogLevel)
	}
	if cfg.Server.HTTPAddr != ":9090" {
		t.Errorf("http_addr = %q, want :9090", cfg.Server.HTTPAddr)
	}
	if !cfg.Format.EnableTOON {
		t.Error("enable_toon = false, want true")
	}
	if cfg.Assets.Dir != "/opt/toonforge/assets" {
		t.Errorf("assets.dir = %q", cfg.Assets.Dir)
	}
	if len(cfg.Tools.Enabled) != 2 {
		t.Errorf("tools.enabled = %v, want two entries", cfg.Tools.Enabled)
	}
}

func TestLoadFromReader_Defaults(t *testing.T) {
	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.LogLevel != config.LogInfo {
		t.Errorf("default log_level = %q, want info", cfg.Server.LogLevel)
	}
	if cfg.Format.EnableTOON {
		t.Error("default enable_toon = true, want false")
	}
	if cfg.Assets.Dir != "assets" {
		t.Errorf("default assets.dir = %q, want assets", cfg.Assets.Dir)
	}
	if cfg.Server.HTTPAddr != "" {
		t.Errorf("default http_addr = %q, want empty", cfg.Server.HTTPAddr)
	}
}

func TestLoadFromReader_PartialSectionKeepsDefaults(t *testing.T) {
	cfg, err := config.LoadFromReader(strings.NewReader("format:\n  enable_toon: true\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.LogLevel != config.LogInfo {
		t.Errorf("log_level = %q, want the info default", cfg.Server.LogLevel)
	}
	if cfg.Assets.Dir != "assets" {
		t.Errorf("assets.dir = %q, want the default", cfg.Assets.Dir)
	}
}

func TestLoadFromReader_UnknownFieldRejected(t *testing.T) {
	_, err := config.LoadFromReader(strings.NewReader("bogus_section:\n  x: 1\n"))
	if err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
}

func TestLoadFromReader_InvalidLogLevel(t *testing.T) {
	_, err := config.LoadFromReader(strings.NewReader("server:\n  log_level: loud\n"))
	if err == nil {
		t.Fatal("expected error for invalid log level, got nil")
	}
	if !strings.Contains(err.Error(), "log_level") {
		t.Errorf("error %q should name the offending field", err)
	}
}

func TestLoadFromReader_UnknownToolRejected(t *testing.T) {
	_, err := config.LoadFromReader(strings.NewReader("tools:\n  enabled:\n    - frobnicate\n"))
	if err == nil {
		t.Fatal("expected error for unknown tool name, got nil")
	}
}

func TestLoadFromReader_DuplicateToolRejected(t *testing.T) {
	yaml := "tools:\n  enabled:\n    - get_logo\n    - get_logo\n"
	if _, err := config.LoadFromReader(strings.NewReader(yaml)); err == nil {
		t.Fatal("expected error for duplicate tool name, got nil")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load("/nonexistent/toonforge.yaml")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestEnvOverride_EnableTOON(t *testing.T) {
	t.Setenv("TOONFORGE_ENABLE_TOON_FORMAT", "true")
	cfg, err := config.LoadFromReader(strings.NewReader("format:\n  enable_toon: false\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Format.EnableTOON {
		t.Error("TOONFORGE_ENABLE_TOON_FORMAT=true should override the file value")
	}
}

func TestEnvOverride_FallbackName(t *testing.T) {
	t.Setenv("ENABLE_TOON_FORMAT", "1")
	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Format.EnableTOON {
		t.Error("ENABLE_TOON_FORMAT=1 should enable TOON output")
	}
}

func TestEnvOverride_UnparsableIgnored(t *testing.T) {
	t.Setenv("TOONFORGE_ENABLE_TOON_FORMAT", "maybe")
	cfg, err := config.LoadFromReader(strings.NewReader("format:\n  enable_toon: true\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Format.EnableTOON {
		t.Error("unparsable override should leave the file value in place")
	}
}
