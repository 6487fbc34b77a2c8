package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MrWong99/tagmend/internal/config"
)

const sampleYAML = `
server:
  listen_addr: ":9000"
  log_level: debug
  tls:
    cert_file: /etc/tagmend/cert.pem
    key_file: /etc/tagmend/key.pem
vocabulary:
  source: file
  path: /etc/tagmend/vocab.yaml
  fallback: builtin
  reload_interval: 30s
matcher:
  threshold: 2.5
  lead_bonus: 0
  vowel_bonus: 0.3
normalize:
  compose_nfc: true
discord:
  token: bot-token
  guild_id: "1234"
telemetry:
  service_name: tagmend-test
`

func TestLoadFromReader_Full(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.ListenAddr != ":9000" {
		t.Errorf("listen_addr: got %q", cfg.Server.ListenAddr)
	}
	if cfg.Server.TLS == nil || cfg.Server.TLS.KeyFile != "/etc/tagmend/key.pem" {
		t.Errorf("tls: got %+v", cfg.Server.TLS)
	}
	if cfg.Vocabulary.Source != config.SourceFile || cfg.Vocabulary.Path != "/etc/tagmend/vocab.yaml" {
		t.Errorf("vocabulary: got %+v", cfg.Vocabulary)
	}
	if cfg.Vocabulary.Fallback != config.SourceBuiltin {
		t.Errorf("fallback: got %q, want %q", cfg.Vocabulary.Fallback, config.SourceBuiltin)
	}
	if cfg.Vocabulary.ReloadInterval != 30*time.Second {
		t.Errorf("reload_interval: got %v", cfg.Vocabulary.ReloadInterval)
	}
	// An explicit zero bonus survives defaulting.
	if cfg.Matcher.LeadBonus == nil || *cfg.Matcher.LeadBonus != 0 {
		t.Errorf("lead_bonus: got %v", cfg.Matcher.LeadBonus)
	}
	if !cfg.Normalize.ComposeNFC {
		t.Error("compose_nfc: got false")
	}
	if cfg.Discord.GuildID != "1234" {
		t.Errorf("guild_id: got %q", cfg.Discord.GuildID)
	}
	if cfg.Telemetry.ServiceName != "tagmend-test" {
		t.Errorf("service_name: got %q", cfg.Telemetry.ServiceName)
	}
}

func TestLoadFromReader_Defaults(t *testing.T) {
	t.Parallel()
	for _, input := range []string{"", "server: {}\n"} {
		cfg, err := config.LoadFromReader(strings.NewReader(input))
		if err != nil {
			t.Fatalf("LoadFromReader(%q): %v", input, err)
		}
		want := config.Default()
		if cfg.Server.ListenAddr != want.Server.ListenAddr ||
			cfg.Server.LogLevel != config.LogInfo ||
			cfg.Vocabulary.Source != config.SourceBuiltin ||
			cfg.Vocabulary.ReloadInterval != config.DefaultReloadInterval ||
			cfg.Matcher.Threshold != config.DefaultThreshold ||
			*cfg.Matcher.LeadBonus != config.DefaultLeadBonus ||
			*cfg.Matcher.VowelBonus != config.DefaultVowelBonus ||
			cfg.Telemetry.ServiceName != config.DefaultServiceName {
			t.Errorf("LoadFromReader(%q) defaults = %+v", input, cfg)
		}
	}
}

func TestLoadFromReader_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantSub string
	}{
		{name: "unknown field", input: "server:\n  port: 80\n", wantSub: "field port not found"},
		{name: "bad log level", input: "server:\n  log_level: loud\n", wantSub: "server.log_level"},
		{name: "unknown source", input: "vocabulary:\n  source: redis\n", wantSub: "vocabulary.source"},
		{name: "file without path", input: "vocabulary:\n  source: file\n", wantSub: "vocabulary.path"},
		{name: "postgres without dsn", input: "vocabulary:\n  source: postgres\n", wantSub: "vocabulary.postgres_dsn"},
		{name: "unknown fallback", input: "vocabulary:\n  fallback: redis\n", wantSub: "vocabulary.fallback"},
		{name: "fallback equals source", input: "vocabulary:\n  source: builtin\n  fallback: builtin\n", wantSub: "must differ"},
		{name: "postgres fallback without dsn", input: "vocabulary:\n  fallback: postgres\n", wantSub: "fallback is postgres"},
		{name: "negative threshold", input: "matcher:\n  threshold: -1\n", wantSub: "matcher.threshold"},
		{name: "negative bonus", input: "matcher:\n  vowel_bonus: -0.3\n", wantSub: "matcher.vowel_bonus"},
		{name: "half tls", input: "server:\n  tls:\n    cert_file: a.pem\n", wantSub: "server.tls"},
		{name: "bad duration", input: "vocabulary:\n  reload_interval: soon\n", wantSub: "decode yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.LoadFromReader(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{
		Server:     config.ServerConfig{LogLevel: "loud"},
		Vocabulary: config.VocabularyConfig{Source: "redis"},
		Matcher:    config.MatcherConfig{Threshold: -1},
	}
	err := config.Validate(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, sub := range []string{"server.log_level", "vocabulary.source", "matcher.threshold"} {
		if !strings.Contains(err.Error(), sub) {
			t.Errorf("joined error missing %q: %v", sub, err)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.LogLevel != config.LogDebug {
		t.Errorf("log_level: got %q", cfg.Server.LogLevel)
	}

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "config: open") {
		t.Errorf("missing file: got %v", err)
	}
}
