// Package jamo scores Hangul tokens against each other and picks the closest
// vocabulary entry.
//
// The score is a rune-level Levenshtein distance reduced by a small bonus
// when the first syllable of both tokens shares its lead consonant, and
// another when it shares its vowel. Two tags that start with the
// same sound are treated as closer than their edit distance alone suggests.
package jamo

import (
	"unicode/utf8"

	"github.com/antzucaro/matchr"

	"github.com/MrWong99/tagmend/pkg/hangul"
)

const (
	// DefaultThreshold is the largest adjusted distance still accepted as a
	// correction.
	DefaultThreshold = 2.5

	// DefaultLeadBonus is subtracted when the first syllables share a lead.
	DefaultLeadBonus = 0.5

	// DefaultVowelBonus is subtracted when the first syllables share a
	// vowel. It applies independently of the lead bonus.
	DefaultVowelBonus = 0.3
)

// Distance returns the adjusted distance between probe and candidate using
// the default bonuses. Lower is closer; the result may be negative.
func Distance(probe, candidate string) float64 {
	return distance(probe, candidate, DefaultLeadBonus, DefaultVowelBonus)
}

func distance(probe, candidate string, leadBonus, vowelBonus float64) float64 {
	d := float64(matchr.Levenshtein(probe, candidate))
	if !hangul.ContainsSyllable(probe) {
		return d
	}

	p, _ := utf8.DecodeRuneInString(probe)
	c, _ := utf8.DecodeRuneInString(candidate)
	ps, ok := hangul.Decompose(p)
	if !ok {
		return d
	}
	cs, ok := hangul.Decompose(c)
	if !ok {
		return d
	}
	if ps.Lead == cs.Lead {
		d -= leadBonus
	}
	if ps.Vowel == cs.Vowel {
		d -= vowelBonus
	}
	return d
}
