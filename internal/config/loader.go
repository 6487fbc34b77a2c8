package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidSources lists the vocabulary source names accepted by [Validate].
var ValidSources = []string{SourceBuiltin, SourceFile, SourcePostgres}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader].
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

// LoadFromReader decodes a YAML config from r, applies defaults and validates
// the result. An empty document yields [Default].
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if tls := cfg.Server.TLS; tls != nil && (tls.CertFile == "" || tls.KeyFile == "") {
		errs = append(errs, errors.New("server.tls requires both cert_file and key_file"))
	}

	src := cfg.Vocabulary.Source
	switch {
	case src == "":
	case !slices.Contains(ValidSources, src):
		errs = append(errs, fmt.Errorf("vocabulary.source %q is invalid; valid values: builtin, file, postgres", src))
	case src == SourceFile && cfg.Vocabulary.Path == "":
		errs = append(errs, errors.New("vocabulary.path is required when source is file"))
	case src == SourcePostgres && cfg.Vocabulary.PostgresDSN == "":
		errs = append(errs, errors.New("vocabulary.postgres_dsn is required when source is postgres"))
	}
	switch fb := cfg.Vocabulary.Fallback; {
	case fb == "":
	case !slices.Contains(ValidSources, fb):
		errs = append(errs, fmt.Errorf("vocabulary.fallback %q is invalid; valid values: builtin, file, postgres", fb))
	case fb == src || (src == "" && fb == SourceBuiltin):
		errs = append(errs, fmt.Errorf("vocabulary.fallback %q must differ from vocabulary.source", fb))
	case fb == SourceFile && cfg.Vocabulary.Path == "":
		errs = append(errs, errors.New("vocabulary.path is required when fallback is file"))
	case fb == SourcePostgres && cfg.Vocabulary.PostgresDSN == "":
		errs = append(errs, errors.New("vocabulary.postgres_dsn is required when fallback is postgres"))
	}
	if src == SourceFile && cfg.Vocabulary.Fallback != "" && cfg.Vocabulary.ReloadInterval > 0 {
		slog.Warn("vocabulary.fallback is ignored while the file source is watched; set a negative reload_interval to use it")
	}
	if src != SourceFile && cfg.Vocabulary.Fallback != SourceFile && cfg.Vocabulary.Path != "" {
		slog.Warn("vocabulary.path is set but ignored; it only applies to the file source", "source", src)
	}

	if cfg.Matcher.Threshold < 0 {
		errs = append(errs, fmt.Errorf("matcher.threshold %.2f must not be negative", cfg.Matcher.Threshold))
	}
	if b := cfg.Matcher.LeadBonus; b != nil && *b < 0 {
		errs = append(errs, fmt.Errorf("matcher.lead_bonus %.2f must be >= 0", *b))
	}
	if b := cfg.Matcher.VowelBonus; b != nil && *b < 0 {
		errs = append(errs, fmt.Errorf("matcher.vowel_bonus %.2f must be >= 0", *b))
	}
	if cfg.Matcher.Threshold != 0 && cfg.Matcher.Threshold != DefaultThreshold {
		slog.Warn("matcher.threshold differs from the default; corrections will change", "threshold", cfg.Matcher.Threshold)
	}

	if cfg.Discord.GuildID != "" && cfg.Discord.Token == "" {
		slog.Warn("discord.guild_id is set but discord.token is empty; the bot stays disabled")
	}

	return errors.Join(errs...)
}
