// Package tagging turns free-text tag input into annotated tag records.
//
// [TagPipeline.Process] splits the input on commas and runs every tag through
// three stages:
//
//  1. Normalization (package normalize): collapse repeated standalone jamo.
//  2. Matching ([Matcher], package jamo): correct to the closest canonical
//     vocabulary token when it is within the acceptance threshold.
//  3. Translation ([vocab.Vocabulary.Translate]): map the canonical token to
//     its display label.
//
// The vocabulary is injected through a [VocabularySource]; there is no
// package-level state, so pipelines over different vocabularies can coexist.
// All types are safe for concurrent use.
package tagging

import (
	"context"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/MrWong99/tagmend/internal/observe"
	"github.com/MrWong99/tagmend/internal/tagging/jamo"
	"github.com/MrWong99/tagmend/internal/tagging/normalize"
	"github.com/MrWong99/tagmend/internal/vocab"
)

// VocabularySource hands out the vocabulary snapshot to use for one call.
// [vocab.Store] implements it.
type VocabularySource interface {
	Vocabulary() *vocab.Vocabulary
}

// Matcher corrects a single normalized token against the vocabulary entries.
// [jamo.Matcher] implements it.
//
// When matched is false, canonical must equal token unchanged.
type Matcher interface {
	Match(token string, entries []vocab.Entry) (canonical string, distance float64, matched bool)
}

// Compile-time interface checks.
var (
	_ VocabularySource = (*vocab.Store)(nil)
	_ Matcher          = (*jamo.Matcher)(nil)
)

// staticSource is the concrete VocabularySource behind [FromVocabulary].
type staticSource struct{ v *vocab.Vocabulary }

func (s staticSource) Vocabulary() *vocab.Vocabulary { return s.v }

// FromVocabulary returns a [VocabularySource] that always serves v.
func FromVocabulary(v *vocab.Vocabulary) VocabularySource {
	return staticSource{v: v}
}

// PipelineOption is a functional option for [NewPipeline].
type PipelineOption func(*TagPipeline)

// WithMatcher replaces the default [jamo.Matcher].
func WithMatcher(m Matcher) PipelineOption {
	return func(p *TagPipeline) {
		p.matcher = m
	}
}

// WithNormalizer replaces the default normalizer. The same normalizer should
// be configured on the matcher so that both stages agree.
func WithNormalizer(n *normalize.Normalizer) PipelineOption {
	return func(p *TagPipeline) {
		p.normalizer = n
	}
}

// WithMetrics records pipeline metrics to m instead of
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) PipelineOption {
	return func(p *TagPipeline) {
		p.metrics = m
	}
}

// TagPipeline is the tag processing entry point.
type TagPipeline struct {
	source     VocabularySource
	matcher    Matcher
	normalizer *normalize.Normalizer
	metrics    *observe.Metrics
}

// NewPipeline creates a [TagPipeline] reading its vocabulary from source.
func NewPipeline(source VocabularySource, opts ...PipelineOption) *TagPipeline {
	p := &TagPipeline{source: source}
	for _, o := range opts {
		o(p)
	}
	if p.matcher == nil {
		p.matcher = jamo.New(jamo.WithNormalizer(p.normalizer))
	}
	if p.metrics == nil {
		p.metrics = observe.DefaultMetrics()
	}
	return p
}

// Vocabulary returns the snapshot the next Process call would use.
func (p *TagPipeline) Vocabulary() *vocab.Vocabulary {
	if p.source == nil {
		return nil
	}
	return p.source.Vocabulary()
}

// Process turns raw comma-separated tag text into one [TagRecord] per
// non-blank tag, in input order and without deduplication. It never returns
// nil; input without tags yields an empty slice.
//
// One vocabulary snapshot is used for the whole call. ctx only carries
// tracing; processing is synchronous and never cancelled midway.
func (p *TagPipeline) Process(ctx context.Context, raw string) []TagRecord {
	start := time.Now()
	ctx, span := observe.StartSpan(ctx, "tagging.process")
	defer span.End()

	tokens := Split(raw)
	v := p.Vocabulary()
	entries := v.Entries()

	records := make([]TagRecord, 0, len(tokens))
	corrected, translated := 0, 0
	for _, token := range tokens {
		n := p.normalizer.Normalize(token)
		c, dist, _ := p.matcher.Match(n, entries)
		if scored(dist) {
			p.metrics.MatchDistance.Record(ctx, dist)
		}
		d := v.Translate(c)

		rec := TagRecord{
			Original:      token,
			Corrected:     c,
			DisplayLabel:  d,
			WasCorrected:  c != n,
			WasTranslated: d != c,
		}
		if rec.WasCorrected {
			corrected++
		}
		if rec.WasTranslated {
			translated++
		}
		p.metrics.RecordTag(ctx, rec.WasCorrected, rec.WasTranslated)
		records = append(records, rec)
	}

	span.SetAttributes(observe.TagAttributes(len(records), corrected, translated)...)
	span.SetAttributes(attribute.Int("tagging.vocabulary_entries", v.Len()))
	p.metrics.PipelineDuration.Record(ctx, time.Since(start).Seconds())

	if corrected > 0 {
		observe.Logger(ctx).Debug("tagging: corrected tags",
			"count", corrected,
			"tags", len(records),
		)
	}
	return records
}

// scored reports whether dist came out of the distance scan rather than an
// exact hit or an empty vocabulary.
func scored(dist float64) bool {
	return dist != 0 && !math.IsInf(dist, 0)
}

// Split cuts raw on commas, trims surrounding whitespace from each piece and
// drops the blank ones. "a,, b" yields ["a" "b"].
func Split(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
