package config

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are applied; everything else is
// listed in RestartRequired.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// MatcherChanged is true if the threshold or either bonus changed.
	MatcherChanged bool

	// NormalizeChanged is true if the normalization options changed.
	NormalizeChanged bool

	// RestartRequired names the top-level settings that changed but only take
	// effect after a restart (e.g., "server.listen_addr").
	RestartRequired []string
}

// PipelineChanged reports whether the tag pipeline must be rebuilt.
func (d ConfigDiff) PipelineChanged() bool {
	return d.MatcherChanged || d.NormalizeChanged
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.Matcher.Threshold != new.Matcher.Threshold ||
		!equalFloatPtr(old.Matcher.LeadBonus, new.Matcher.LeadBonus) ||
		!equalFloatPtr(old.Matcher.VowelBonus, new.Matcher.VowelBonus) {
		d.MatcherChanged = true
	}

	if old.Normalize != new.Normalize {
		d.NormalizeChanged = true
	}

	if old.Server.ListenAddr != new.Server.ListenAddr || !equalTLS(old.Server.TLS, new.Server.TLS) {
		d.RestartRequired = append(d.RestartRequired, "server")
	}
	if old.Vocabulary != new.Vocabulary {
		d.RestartRequired = append(d.RestartRequired, "vocabulary")
	}
	if old.Discord != new.Discord {
		d.RestartRequired = append(d.RestartRequired, "discord")
	}
	if old.Telemetry != new.Telemetry {
		d.RestartRequired = append(d.RestartRequired, "telemetry")
	}

	return d
}

func equalFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTLS(a, b *TLSConfig) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
