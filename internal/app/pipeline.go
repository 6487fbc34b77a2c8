package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MrWong99/tagmend/internal/config"
	"github.com/MrWong99/tagmend/internal/observe"
	"github.com/MrWong99/tagmend/internal/resilience"
	"github.com/MrWong99/tagmend/internal/tagging"
	"github.com/MrWong99/tagmend/internal/tagging/jamo"
	"github.com/MrWong99/tagmend/internal/tagging/normalize"
	"github.com/MrWong99/tagmend/internal/vocab"
)

// LoadVocabulary loads one snapshot from the source selected by vc. When
// that source cannot be created or loaded and vc.Fallback is set, the
// fallback source is tried next. The name of the source that served the
// snapshot is returned with it.
func LoadVocabulary(ctx context.Context, reg *vocab.Registry, vc config.VocabularyConfig) (*vocab.Vocabulary, string, error) {
	primary := vc.Source
	if primary == "" {
		primary = config.SourceBuiltin
	}
	chain := resilience.NewChain(primary, sourceConfig(vc, primary), resilience.BreakerConfig{})
	if vc.Fallback != "" {
		chain.Add(vc.Fallback, sourceConfig(vc, vc.Fallback))
	}

	v, served, err := resilience.Try(chain, func(sc vocab.SourceConfig) (*vocab.Vocabulary, error) {
		src, err := reg.Create(sc)
		if err != nil {
			return nil, err
		}
		return src.Load(ctx)
	})
	if err != nil {
		return nil, "", fmt.Errorf("app: load vocabulary from %q: %w", primary, err)
	}
	if served != primary {
		slog.Warn("vocabulary served by fallback source", "source", primary, "fallback", served)
	}
	return v, served, nil
}

func sourceConfig(vc config.VocabularyConfig, name string) vocab.SourceConfig {
	return vocab.SourceConfig{
		Name:        name,
		Path:        vc.Path,
		PostgresDSN: vc.PostgresDSN,
	}
}

// BuildPipeline assembles a tag pipeline over source using the matcher and
// normalizer settings of cfg. Unset bonuses fall back to the defaults.
func BuildPipeline(cfg *config.Config, source tagging.VocabularySource, m *observe.Metrics) *tagging.TagPipeline {
	var nopts []normalize.Option
	if cfg.Normalize.ComposeNFC {
		nopts = append(nopts, normalize.WithCanonicalComposition())
	}
	n := normalize.New(nopts...)

	threshold := cfg.Matcher.Threshold
	if threshold == 0 {
		threshold = config.DefaultThreshold
	}
	matcher := jamo.New(
		jamo.WithThreshold(threshold),
		jamo.WithLeadBonus(floatOr(cfg.Matcher.LeadBonus, config.DefaultLeadBonus)),
		jamo.WithVowelBonus(floatOr(cfg.Matcher.VowelBonus, config.DefaultVowelBonus)),
		jamo.WithNormalizer(n),
	)

	opts := []tagging.PipelineOption{
		tagging.WithMatcher(matcher),
		tagging.WithNormalizer(n),
	}
	if m != nil {
		opts = append(opts, tagging.WithMetrics(m))
	}
	return tagging.NewPipeline(source, opts...)
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
