// Package hangul splits composed Hangul syllable blocks into their lead,
// vowel, and tail jamo and classifies runes by their role in the script.
//
// Precomposed syllables occupy U+AC00..U+D7A3 and are laid out as
// lead × vowel × tail, with 19 leads, 21 vowels, and 28 tail slots (slot 0
// meaning "no tail"). Jamo are reported as compatibility jamo
// (U+3131..U+3163) because that is what users produce when they type a bare
// consonant or vowel on a standard keyboard.
//
// Every function in this package is pure and safe for concurrent use.
package hangul

const (
	// SyllableBase is the first precomposed syllable block (가).
	SyllableBase rune = 0xAC00

	// SyllableLast is the last precomposed syllable block (힣).
	SyllableLast rune = 0xD7A3

	leadCount  = 19
	vowelCount = 21
	tailCount  = 28
)

// Syllable is a decomposed syllable block. Tail is 0 when the block has no
// final consonant.
type Syllable struct {
	Lead  rune
	Vowel rune
	Tail  rune
}

// HasTail reports whether the syllable carries a final consonant.
func (s Syllable) HasTail() bool { return s.Tail != 0 }

// Decompose splits r into its lead, vowel, and tail jamo. It returns false
// when r is not a precomposed syllable block; r is then left for the caller
// to pass through unchanged.
func Decompose(r rune) (Syllable, bool) {
	if !IsSyllable(r) {
		return Syllable{}, false
	}
	offset := int(r - SyllableBase)
	return Syllable{
		Lead:  leads[offset/(vowelCount*tailCount)],
		Vowel: vowels[(offset/tailCount)%vowelCount],
		Tail:  tails[offset%tailCount],
	}, true
}

// Compose is the inverse of [Decompose]. It returns false when any component
// is outside its alphabet (a tail of 0 is accepted as "no tail").
func Compose(s Syllable) (rune, bool) {
	l, ok := leadIndex[s.Lead]
	if !ok {
		return 0, false
	}
	v, ok := vowelIndex[s.Vowel]
	if !ok {
		return 0, false
	}
	t, ok := tailIndex[s.Tail]
	if !ok {
		return 0, false
	}
	return SyllableBase + rune((l*vowelCount+v)*tailCount+t), true
}

// IsSyllable reports whether r is a precomposed syllable block.
func IsSyllable(r rune) bool {
	return r >= SyllableBase && r <= SyllableLast
}

// ContainsSyllable reports whether s holds at least one syllable block.
func ContainsSyllable(s string) bool {
	for _, r := range s {
		if IsSyllable(r) {
			return true
		}
	}
	return false
}
