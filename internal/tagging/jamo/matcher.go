package jamo

import (
	"math"

	"github.com/MrWong99/tagmend/internal/tagging/normalize"
	"github.com/MrWong99/tagmend/internal/vocab"
)

// Option is a functional option for configuring a [Matcher].
type Option func(*Matcher)

// WithThreshold sets the largest adjusted distance accepted as a correction.
// Default: 2.5.
func WithThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.threshold = threshold
	}
}

// WithLeadBonus sets the bonus for a shared first-syllable lead.
// Default: 0.5.
func WithLeadBonus(bonus float64) Option {
	return func(m *Matcher) {
		m.leadBonus = bonus
	}
}

// WithVowelBonus sets the bonus for a shared first-syllable vowel.
// Default: 0.3.
func WithVowelBonus(bonus float64) Option {
	return func(m *Matcher) {
		m.vowelBonus = bonus
	}
}

// WithNormalizer replaces the normalizer applied to every token before
// matching. Default: [normalize.Normalize].
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(m *Matcher) {
		m.normalizer = n
	}
}

// Matcher corrects a token to the closest canonical vocabulary entry. It is
// read-only after construction and safe for concurrent use.
type Matcher struct {
	threshold  float64
	leadBonus  float64
	vowelBonus float64
	normalizer *normalize.Normalizer
}

// New returns a [Matcher] with the default threshold and bonuses, adjusted by
// opts.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		threshold:  DefaultThreshold,
		leadBonus:  DefaultLeadBonus,
		vowelBonus: DefaultVowelBonus,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Threshold reports the configured acceptance threshold.
func (m *Matcher) Threshold() float64 { return m.threshold }

// Distance is [Distance] with the matcher's bonuses.
func (m *Matcher) Distance(probe, candidate string) float64 {
	return distance(probe, candidate, m.leadBonus, m.vowelBonus)
}

// Match finds the entry closest to token.
//
// The token is normalized first. If any entry lists the normalized token as
// a variant, the first such entry wins with distance 0. Otherwise every
// variant of every entry is scored in definition order and the first
// candidate with the lowest adjusted distance is kept. When that distance is
// within the threshold the entry's canonical token is returned with
// matched=true.
//
// On a miss, token is returned exactly as passed in, together with the best
// distance seen (+Inf when nothing was scored).
func (m *Matcher) Match(token string, entries []vocab.Entry) (canonical string, dist float64, matched bool) {
	if token == "" || len(entries) == 0 {
		return token, 0, false
	}
	n := m.normalizer.Normalize(token)

	for _, e := range entries {
		for _, v := range e.Variants {
			if v == n {
				return e.Canonical, 0, true
			}
		}
	}

	best := math.Inf(1)
	bestAt := -1
	for i, e := range entries {
		for _, v := range e.Variants {
			if d := m.Distance(n, v); d < best {
				best, bestAt = d, i
			}
		}
	}

	if bestAt >= 0 && best <= m.threshold {
		return entries[bestAt].Canonical, best, true
	}
	return token, best, false
}
