package vocab

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/MrWong99/tagmend/internal/resilience"
)

// SourceFunc adapts an ordinary function to [Source].
type SourceFunc func(ctx context.Context) (*Vocabulary, error)

// Load implements [Source].
func (f SourceFunc) Load(ctx context.Context) (*Vocabulary, error) { return f(ctx) }

// PollerConfig configures a [Poller]. Zero fields take the defaults.
type PollerConfig struct {
	// Interval between loads. Default: 5s.
	Interval time.Duration

	// Breaker guards the source. After repeated failures the poller stops
	// calling it until the cooldown has elapsed.
	Breaker resilience.BreakerConfig

	// OnChange is called after each swap.
	OnChange func(old, new *Vocabulary)

	// OnError is called when a load fails. Loads skipped by an open breaker
	// are not reported.
	OnError func(error)
}

// Poller reloads a [Source] that has no change notification of its own,
// such as a database, and swaps a snapshot into a [Store] whenever its
// content differs from the one being served.
type Poller struct {
	src     Source
	store   *Store
	cfg     PollerConfig
	breaker *resilience.Breaker

	mu sync.Mutex
}

// NewPoller returns a poller for src. It does not load anything until
// [Poller.Check] or [Poller.Run] is called.
func NewPoller(src Source, store *Store, cfg PollerConfig) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker.Name = "vocabulary"
	}
	return &Poller{
		src:     src,
		store:   store,
		cfg:     cfg,
		breaker: resilience.NewBreaker(cfg.Breaker),
	}
}

// Run polls until ctx is cancelled and always returns nil.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}

// Check performs a single load and reports whether a new snapshot was
// installed.
func (p *Poller) Check(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	var v *Vocabulary
	err := p.breaker.Do(func() error {
		var err error
		v, err = p.src.Load(ctx)
		return err
	})
	switch {
	case errors.Is(err, resilience.ErrOpen):
		return false
	case err != nil:
		slog.Warn("vocab poller: keeping previous vocabulary", "err", err, "circuit", p.breaker.State())
		if p.cfg.OnError != nil {
			p.cfg.OnError(err)
		}
		return false
	}

	old := p.store.Vocabulary()
	if sameContent(old, v) {
		return false
	}
	p.store.Swap(v)
	slog.Info("vocab poller: vocabulary reloaded", "entries", v.Len())
	if p.cfg.OnChange != nil {
		p.cfg.OnChange(old, v)
	}
	return true
}

// CircuitState reports the state of the breaker guarding the source.
func (p *Poller) CircuitState() resilience.State {
	return p.breaker.State()
}

func sameContent(a, b *Vocabulary) bool {
	if a == nil || b == nil {
		return a == b
	}
	return reflect.DeepEqual(Export(a), Export(b))
}
