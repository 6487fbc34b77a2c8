// Package vocab holds the curated tag vocabulary: an ordered correction table
// mapping each canonical token to its known variant spellings, and a
// translation table mapping canonical tokens to display labels.
//
// A [Vocabulary] is immutable once built. Hot reload is done by swapping
// whole snapshots through a [Store], so readers never observe a
// half-updated table.
//
// Supported sources:
//   - the embedded default bundle ([Default], [BuiltinSource])
//   - YAML bundle files ([LoadFile], [LoadFromReader], [FileSource])
//   - PostgreSQL (package pgstore)
package vocab

import (
	"errors"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// ErrNoVocabulary is returned when an operation needs a loaded vocabulary
// and none is available.
var ErrNoVocabulary = errors.New("vocab: no vocabulary loaded")

// Entry is one row of the correction table.
type Entry struct {
	// Canonical is the reference spelling returned by the matcher.
	Canonical string `yaml:"canonical" json:"canonical"`

	// Variants lists accepted spellings, conventionally including Canonical
	// itself. An entry with no variants is never matched.
	Variants []string `yaml:"variants" json:"variants"`
}

// Vocabulary is an immutable correction + translation bundle. The zero value
// and a nil pointer both behave as an empty vocabulary. Safe for concurrent
// use.
type Vocabulary struct {
	source       language.Tag
	target       language.Tag
	entries      []Entry
	translations map[string]string
}

// Option configures a [Vocabulary] at construction time.
type Option func(*Vocabulary)

// WithLanguages records the language of the tags (source) and of the display
// labels (target). Defaults: Korean and English.
func WithLanguages(source, target language.Tag) Option {
	return func(v *Vocabulary) {
		v.source = source
		v.target = target
	}
}

// New builds a Vocabulary. entries and translations are deep-copied, so the
// caller may reuse them afterwards. Entry order is preserved and decides
// tie-breaking during matching.
func New(entries []Entry, translations map[string]string, opts ...Option) *Vocabulary {
	v := &Vocabulary{
		source:       language.Korean,
		target:       language.English,
		entries:      make([]Entry, len(entries)),
		translations: make(map[string]string, len(translations)),
	}
	for i, e := range entries {
		v.entries[i] = Entry{Canonical: e.Canonical, Variants: slices.Clone(e.Variants)}
	}
	for k, label := range translations {
		v.translations[k] = label
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Entries returns the correction table in definition order. The slice is
// shared and must not be modified.
func (v *Vocabulary) Entries() []Entry {
	if v == nil {
		return nil
	}
	return v.entries
}

// Len returns the number of correction entries.
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.entries)
}

// Canonicals returns the canonical tokens in definition order.
func (v *Vocabulary) Canonicals() []string {
	if v == nil {
		return nil
	}
	out := make([]string, len(v.entries))
	for i, e := range v.entries {
		out[i] = e.Canonical
	}
	return out
}

// Translations returns a copy of the translation table.
func (v *Vocabulary) Translations() map[string]string {
	out := make(map[string]string)
	if v == nil {
		return out
	}
	for k, label := range v.translations {
		out[k] = label
	}
	return out
}

// SourceLanguage is the language the tags are written in.
func (v *Vocabulary) SourceLanguage() language.Tag {
	if v == nil {
		return language.Korean
	}
	return v.source
}

// TargetLanguage is the language of the display labels.
func (v *Vocabulary) TargetLanguage() language.Tag {
	if v == nil {
		return language.English
	}
	return v.target
}

// Translate returns the display label for token. A token without a
// translation is returned unchanged; identity is the "no translation" signal.
//
// No normalization is performed on token.
func (v *Vocabulary) Translate(token string) string {
	if v == nil {
		return token
	}
	if label, ok := v.translations[token]; ok {
		return label
	}
	return token
}

// Suggestion is a canonical token offered for completion.
type Suggestion struct {
	Canonical string `json:"canonical"`
	Label     string `json:"label"`
}

// Suggest returns up to limit canonical tokens starting with prefix, in
// definition order. An empty prefix matches every entry. limit <= 0 means no
// limit.
func (v *Vocabulary) Suggest(prefix string, limit int) []Suggestion {
	var out []Suggestion
	for _, e := range v.Entries() {
		if !strings.HasPrefix(e.Canonical, prefix) {
			continue
		}
		out = append(out, Suggestion{Canonical: e.Canonical, Label: v.Translate(e.Canonical)})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
