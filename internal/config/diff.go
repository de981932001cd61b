package config

// Changes describes what changed between two configs. The watcher hands it
// to the reload callback so the server can apply what is hot-reloadable (the
// log level) and report what is not.
type Changes struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// TOONFormatChanged means format.enable_toon differs. The flag is fixed
	// per process; the change takes effect on the next restart.
	TOONFormatChanged bool

	// AssetsDirChanged means assets.dir differs. Also restart-only.
	AssetsDirChanged bool

	// ToolsChanged means the enabled tool set differs. Also restart-only.
	ToolsChanged bool
}

// Any reports whether the diff contains any change at all.
func (d Changes) Any() bool {
	return d.LogLevelChanged || d.TOONFormatChanged || d.AssetsDirChanged || d.ToolsChanged
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) Changes {
	d := Changes{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}
	if old.Format.EnableTOON != new.Format.EnableTOON {
		d.TOONFormatChanged = true
	}
	if old.Assets.Dir != new.Assets.Dir {
		d.AssetsDirChanged = true
	}
	if !equalStrings(old.Tools.Enabled, new.Tools.Enabled) {
		d.ToolsChanged = true
	}

	return d
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
