// Package normalize cleans typing artifacts out of a single Hangul tag.
//
// IMEs commonly leave a bare jamo repeated when a key is held or pressed
// twice mid-composition ("ㅋㅋ축구"). Normalize collapses consecutive
// duplicate standalone jamo and leaves everything else untouched.
package normalize

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/MrWong99/tagmend/pkg/hangul"
)

// Normalize drops a standalone jamo when it repeats the immediately
// preceding standalone jamo. Any syllable block or other character in
// between resets the comparison. Bytes that are not valid UTF-8 are copied
// through unchanged. The result is idempotent:
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(token string) string {
	var b strings.Builder
	b.Grow(len(token))

	var prev rune
	havePrev := false
	for i := 0; i < len(token); {
		r, size := utf8.DecodeRuneInString(token[i:])
		raw := token[i : i+size]
		i += size

		if r == utf8.RuneError || hangul.Classify(r) != hangul.ClassStandalone {
			havePrev = false
			b.WriteString(raw)
			continue
		}
		if havePrev && r == prev {
			continue
		}
		prev, havePrev = r, true
		b.WriteString(raw)
	}
	return b.String()
}

// Option configures a [Normalizer].
type Option func(*Normalizer)

// WithCanonicalComposition runs Unicode NFC before collapsing jamo, so that
// conjoining jamo sequences (as produced by NFD file names on macOS) become
// syllable blocks first.
func WithCanonicalComposition() Option {
	return func(n *Normalizer) {
		n.nfc = true
	}
}

// Normalizer is a configurable [Normalize]. The zero value behaves exactly
// like Normalize. Safe for concurrent use.
type Normalizer struct {
	nfc bool
}

// New returns a Normalizer configured with opts.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Normalize applies the configured transforms to token.
func (n *Normalizer) Normalize(token string) string {
	if n != nil && n.nfc {
		token = norm.NFC.String(token)
	}
	return Normalize(token)
}
