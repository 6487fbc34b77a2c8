package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_Check(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"check", "요까,", "abc"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.HasPrefix(out, "ORIGINAL") {
		t.Errorf("missing header: %q", out)
	}
	if !strings.Contains(out, "요가") || !strings.Contains(out, "Yoga") || !strings.Contains(out, "corrected,translated") {
		t.Errorf("요까 row missing correction: %q", out)
	}
	if !strings.Contains(out, "abc") {
		t.Errorf("abc row missing: %q", out)
	}
}

func TestRun_CheckJSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"check", "-json", "abc"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	var got struct {
		Records []struct {
			Original     string `json:"original"`
			Corrected    string `json:"corrected"`
			WasCorrected bool   `json:"was_corrected"`
			Tooltip      string `json:"tooltip"`
		} `json:"records"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, stdout.String())
	}
	if len(got.Records) != 1 || got.Records[0].Corrected != "abc" || got.Records[0].WasCorrected || got.Records[0].Tooltip != "" {
		t.Errorf("records = %+v", got.Records)
	}
}

func TestRun_CheckWithConfig(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "vocab.yaml")
	if err := os.WriteFile(bundle, []byte("corrections:\n  축구: [축구]\ntranslations:\n  축구: Football\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := "vocabulary:\n  source: file\n  path: " + bundle + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if code := run([]string{"check", "-config", cfgPath, "촉구"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Football") {
		t.Errorf("custom vocabulary not used: %q", stdout.String())
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "unknown command", args: []string{"frobnicate"}, want: 2},
		{name: "check without text", args: []string{"check"}, want: 2},
		{name: "check bad flag", args: []string{"check", "-nope", "x"}, want: 2},
		{name: "check missing config", args: []string{"check", "-config", "/nonexistent/c.yaml", "x"}, want: 1},
		{name: "import without from", args: []string{"import"}, want: 2},
		{name: "serve missing config", args: []string{"serve", "-config", "/nonexistent/c.yaml"}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if got := run(tt.args, &stdout, &stderr); got != tt.want {
				t.Errorf("exit code = %d, want %d (stderr: %s)", got, tt.want, stderr.String())
			}
		})
	}
}
