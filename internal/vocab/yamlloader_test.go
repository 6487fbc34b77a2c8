package vocab_test

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/MrWong99/tagmend/internal/vocab"
)

const sampleYAML = `
source_language: ko
target_language: en
corrections:
  축구: [축구, 축그, 촉구]
  식사: [식사, 식싸]
  요가: [요가]
translations:
  축구: Soccer
  식사: Meal
`

func TestLoadFromReader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		input         string
		wantErr       bool
		wantCanonical []string
		wantLen       int
	}{
		{
			name:          "valid bundle keeps order",
			input:         sampleYAML,
			wantCanonical: []string{"축구", "식사", "요가"},
			wantLen:       3,
		},
		{
			name:    "empty document",
			input:   "",
			wantLen: 0,
		},
		{
			name: "duplicate key keeps first position and last variants",
			input: `
corrections:
  a: [a]
  b: [b]
  a: [a, aa]
`,
			wantCanonical: []string{"a", "b"},
			wantLen:       2,
		},
		{
			name:    "unknown field rejected",
			input:   "colour: red\n",
			wantErr: true,
		},
		{
			name:    "corrections must be a mapping",
			input:   "corrections: [a, b]\n",
			wantErr: true,
		},
		{
			name:    "variant with comma rejected",
			input:   "corrections:\n  a: [\"a,b\"]\n",
			wantErr: true,
		},
		{
			name:    "variant with space rejected",
			input:   "corrections:\n  a: [\"a b\"]\n",
			wantErr: true,
		},
		{
			name:    "bad language tag",
			input:   "source_language: \"not a tag!\"\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v, err := vocab.LoadFromReader(strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v.Len() != tt.wantLen {
				t.Errorf("Len: got %d, want %d", v.Len(), tt.wantLen)
			}
			if tt.wantCanonical != nil && !reflect.DeepEqual(v.Canonicals(), tt.wantCanonical) {
				t.Errorf("Canonicals: got %v, want %v", v.Canonicals(), tt.wantCanonical)
			}
		})
	}
}

func TestLoadFromReader_DuplicateVariants(t *testing.T) {
	t.Parallel()
	v, err := vocab.LoadFromReader(strings.NewReader("corrections:\n  a: [a]\n  a: [a, aa]\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := v.Entries()[0].Variants
	if !reflect.DeepEqual(got, []string{"a", "aa"}) {
		t.Errorf("variants: got %v, want [a aa]", got)
	}
}

func TestLoadFromReader_Languages(t *testing.T) {
	t.Parallel()
	v, err := vocab.LoadFromReader(strings.NewReader("source_language: ja\ntarget_language: de\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.SourceLanguage() != language.Japanese {
		t.Errorf("source: got %v, want ja", v.SourceLanguage())
	}
	if v.TargetLanguage() != language.German {
		t.Errorf("target: got %v, want de", v.TargetLanguage())
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	v, err := vocab.LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := v.Translate("축구"); got != "Soccer" {
		t.Errorf("Translate: got %q, want %q", got, "Soccer")
	}

	if _, err := vocab.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExport_RoundTrip(t *testing.T) {
	t.Parallel()
	orig, err := vocab.LoadFromReader(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	if err := enc.Encode(vocab.Export(orig)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	back, err := vocab.LoadFromReader(&buf)
	if err != nil {
		t.Fatalf("reload: %v\n%s", err, buf.String())
	}
	if !reflect.DeepEqual(back.Entries(), orig.Entries()) {
		t.Errorf("entries: got %v, want %v", back.Entries(), orig.Entries())
	}
	if !reflect.DeepEqual(back.Translations(), orig.Translations()) {
		t.Errorf("translations: got %v, want %v", back.Translations(), orig.Translations())
	}
}
