// Package config provides the configuration schema, loader, and file watcher
// for the ToonForge tool server.
package config

// LogLevel controls log verbosity for the ToonForge server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for ToonForge.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server ServerConfig `yaml:"server"`
	Format FormatConfig `yaml:"format"`
	Assets AssetsConfig `yaml:"assets"`
	Tools  ToolsConfig  `yaml:"tools"`
}

// ServerConfig holds logging and sidecar settings for the ToonForge server.
type ServerConfig struct {
	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// HTTPAddr is the TCP address of the metrics/health sidecar
	// (e.g., ":8080"). Empty disables the sidecar; the MCP server itself
	// always speaks over stdio.
	HTTPAddr string `yaml:"http_addr"`
}

// FormatConfig controls the wire representation of tool responses.
type FormatConfig struct {
	// EnableTOON switches tool responses from structured values to TOON
	// text. The flag is read once at startup and stays fixed for the life
	// of the process; only the representation changes, never the content.
	//
	// The environment variables TOONFORGE_ENABLE_TOON_FORMAT and
	// ENABLE_TOON_FORMAT override this value (see [ApplyEnvOverrides]).
	EnableTOON bool `yaml:"enable_toon"`
}

// AssetsConfig locates the static assets served by the asset tools.
type AssetsConfig struct {
	// Dir is the directory holding static assets (the logo file).
	// Default: "assets" relative to the working directory.
	Dir string `yaml:"dir"`
}

// ToolsConfig selects which built-in tools are registered.
type ToolsConfig struct {
	// Enabled lists the tool names to register. Empty means all built-in
	// tools.
	Enabled []string `yaml:"enabled"`
}

// Default returns a Config populated with the built-in defaults: info
// logging, no HTTP sidecar, TOON formatting off, assets under ./assets, all
// tools enabled.
func Default() *Config {
	return &Config{
		Server: ServerConfig{LogLevel: LogInfo},
		Assets: AssetsConfig{Dir: "assets"},
	}
}
