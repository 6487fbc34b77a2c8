package hangul

// Class is the role a rune plays for normalization.
type Class uint8

const (
	// ClassOther is any rune that is neither a syllable block nor a bare jamo.
	ClassOther Class = iota

	// ClassSyllable is a precomposed syllable block.
	ClassSyllable

	// ClassStandalone is a bare compatibility consonant or vowel typed on
	// its own.
	ClassStandalone
)

// String implements [fmt.Stringer].
func (c Class) String() string {
	switch c {
	case ClassSyllable:
		return "syllable"
	case ClassStandalone:
		return "standalone"
	default:
		return "other"
	}
}

// Compatibility jamo block bounds (ㄱ..ㅣ).
const (
	jamoFirst rune = 0x3131
	jamoLast  rune = 0x3163
)

// standalone holds every compatibility consonant and vowel in ㄱ..ㅣ. Built
// from the range so the classifier and the block stay in lockstep.
var standalone = func() map[rune]struct{} {
	m := make(map[rune]struct{}, jamoLast-jamoFirst+1)
	for r := jamoFirst; r <= jamoLast; r++ {
		m[r] = struct{}{}
	}
	return m
}()

// Classify reports the [Class] of r.
func Classify(r rune) Class {
	if IsSyllable(r) {
		return ClassSyllable
	}
	if _, ok := standalone[r]; ok {
		return ClassStandalone
	}
	return ClassOther
}

// IsStandalone reports whether r is a bare compatibility jamo.
func IsStandalone(r rune) bool {
	return Classify(r) == ClassStandalone
}

// IsLead reports whether r can start a syllable block.
func IsLead(r rune) bool {
	_, ok := leadIndex[r]
	return ok
}

// IsVowel reports whether r is a medial vowel.
func IsVowel(r rune) bool {
	_, ok := vowelIndex[r]
	return ok
}
