package vocab

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"
)

//go:embed data/default.yaml
var defaultYAML []byte

var (
	defaultOnce  sync.Once
	defaultVocab *Vocabulary
)

// Default returns the built-in Korean → English tag vocabulary. The bundle is
// parsed once; every call returns the same immutable snapshot. Panics if the
// embedded data is invalid, which the package tests guard against.
func Default() *Vocabulary {
	defaultOnce.Do(func() {
		v, err := LoadFromReader(bytes.NewReader(defaultYAML))
		if err != nil {
			panic(fmt.Sprintf("vocab: embedded default bundle: %v", err))
		}
		defaultVocab = v
	})
	return defaultVocab
}

// DefaultYAML returns a copy of the embedded bundle, handy as a starting
// point for a custom vocabulary file.
func DefaultYAML() []byte {
	return bytes.Clone(defaultYAML)
}
