package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config] with environment overrides applied. It is a convenience wrapper
// around [LoadFromReader], [ApplyEnvOverrides], and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, fills in defaults, applies
// environment overrides, and validates the result. Useful in tests where
// configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyDefaults(cfg)
	ApplyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills zero-valued fields that have non-zero defaults. Needed
// because a present-but-partial YAML section overwrites the [Default] struct.
func applyDefaults(cfg *Config) {
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if cfg.Assets.Dir == "" {
		cfg.Assets.Dir = "assets"
	}
}

// envFlagNames are the recognised environment overrides for
// format.enable_toon, checked in order; the first set variable wins.
var envFlagNames = []string{"TOONFORGE_ENABLE_TOON_FORMAT", "ENABLE_TOON_FORMAT"}

// ApplyEnvOverrides overrides cfg fields from the environment. Boolean values
// follow [strconv.ParseBool]; unparsable values are ignored and the YAML
// value stands.
func ApplyEnvOverrides(cfg *Config) {
	for _, name := range envFlagNames {
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Format.EnableTOON = b
		}
		return
	}
}

// knownToolNames lists the built-in tools recognised in tools.enabled.
var knownToolNames = []string{"multiply_numbers", "generate_code_review_prompt", "get_logo"}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Assets.Dir == "" {
		errs = append(errs, errors.New("assets.dir must not be empty"))
	}

	seen := make(map[string]bool, len(cfg.Tools.Enabled))
	for i, name := range cfg.Tools.Enabled {
		if !slices.Contains(knownToolNames, name) {
			errs = append(errs, fmt.Errorf("tools.enabled[%d] %q is not a known tool; valid values: %v", i, name, knownToolNames))
		}
		if seen[name] {
			errs = append(errs, fmt.Errorf("tools.enabled[%d] %q is listed twice", i, name))
		}
		seen[name] = true
	}

	return errors.Join(errs...)
}
