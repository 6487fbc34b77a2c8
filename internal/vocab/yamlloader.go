package vocab

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a vocabulary bundle.
//
// Example:
//
//	source_language: ko
//	target_language: en
//	corrections:
//	  식사: [식사, 식싸, 식살]
//	  축구: [축구, 축그, 촉구]
//	translations:
//	  식사: Meal
//	  축구: Soccer
type File struct {
	SourceLanguage string            `yaml:"source_language"`
	TargetLanguage string            `yaml:"target_language"`
	Corrections    CorrectionTable   `yaml:"corrections"`
	Translations   map[string]string `yaml:"translations"`
}

// CorrectionTable is the ordered canonical → variants mapping. YAML mappings
// decode into Go maps without order, so the table walks the node itself.
type CorrectionTable []Entry

// UnmarshalYAML implements [yaml.Unmarshaler]. A canonical key defined twice
// keeps the position of its first definition and the variants of its last.
func (t *CorrectionTable) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: corrections must be a mapping of canonical token to variant list", value.Line)
	}

	seen := make(map[string]int, len(value.Content)/2)
	out := make(CorrectionTable, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode, valNode := value.Content[i], value.Content[i+1]

		var canonical string
		if err := keyNode.Decode(&canonical); err != nil {
			return fmt.Errorf("line %d: canonical key: %w", keyNode.Line, err)
		}
		var variants []string
		if err := valNode.Decode(&variants); err != nil {
			return fmt.Errorf("line %d: variants of %q: %w", valNode.Line, canonical, err)
		}

		if at, dup := seen[canonical]; dup {
			slog.Debug("vocab: canonical key redefined", "canonical", canonical, "line", keyNode.Line)
			out[at].Variants = variants
			continue
		}
		seen[canonical] = len(out)
		out = append(out, Entry{Canonical: canonical, Variants: variants})
	}
	*t = out
	return nil
}

// MarshalYAML implements [yaml.Marshaler], writing the table back as an
// ordered mapping with flow-style variant lists.
func (t CorrectionTable) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range t {
		var val yaml.Node
		if err := val.Encode(e.Variants); err != nil {
			return nil, fmt.Errorf("variants of %q: %w", e.Canonical, err)
		}
		val.Style = yaml.FlowStyle
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Canonical},
			&val,
		)
	}
	return node, nil
}

// LoadFile reads and parses a vocabulary bundle from disk.
func LoadFile(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vocab: open %q: %w", path, err)
	}
	defer f.Close()

	v, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("vocab: parse %q: %w", path, err)
	}
	return v, nil
}

// LoadFromReader parses a YAML vocabulary bundle from r, validates it, and
// builds a [Vocabulary].
func LoadFromReader(r io.Reader) (*Vocabulary, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("vocab: decode yaml: %w", err)
	}
	return f.Build()
}

// Build validates f and converts it into a [Vocabulary]. Entries without
// variants are kept but logged, since they can never be matched.
func (f *File) Build() (*Vocabulary, error) {
	if err := Validate(f); err != nil {
		return nil, err
	}
	for _, e := range f.Corrections {
		if len(e.Variants) == 0 {
			slog.Warn("vocab: entry has no variants and will never match", "canonical", e.Canonical)
		}
	}

	src, dst := language.Korean, language.English
	if f.SourceLanguage != "" {
		src = language.Make(f.SourceLanguage)
	}
	if f.TargetLanguage != "" {
		dst = language.Make(f.TargetLanguage)
	}
	return New(f.Corrections, f.Translations, WithLanguages(src, dst)), nil
}

// Export converts v back into its file layout, e.g. for dumping a database
// vocabulary to YAML.
func Export(v *Vocabulary) *File {
	return &File{
		SourceLanguage: v.SourceLanguage().String(),
		TargetLanguage: v.TargetLanguage().String(),
		Corrections:    CorrectionTable(v.Entries()),
		Translations:   v.Translations(),
	}
}
