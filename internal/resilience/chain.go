package resilience

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrAllFailed is returned when every alternative of a [Chain] failed or was
// rejected by its breaker.
var ErrAllFailed = errors.New("resilience: all alternatives failed")

type link[T any] struct {
	name    string
	value   T
	breaker *Breaker
}

// Chain holds ordered alternatives of the same kind, such as a database
// vocabulary source followed by the built-in one.
type Chain[T any] struct {
	cfg   BreakerConfig
	links []link[T]
}

// NewChain creates a [Chain] with primary first. Every alternative gets its
// own [Breaker] built from cfg.
func NewChain[T any](primaryName string, primary T, cfg BreakerConfig) *Chain[T] {
	c := &Chain[T]{cfg: cfg}
	c.Add(primaryName, primary)
	return c
}

// Add appends an alternative tried after all earlier ones.
func (c *Chain[T]) Add(name string, value T) {
	cfg := c.cfg
	cfg.Name = name
	c.links = append(c.links, link[T]{name: name, value: value, breaker: NewBreaker(cfg)})
}

// Len returns the number of alternatives.
func (c *Chain[T]) Len() int { return len(c.links) }

// Try calls fn on each alternative in order and returns the first success
// together with the name of the alternative that produced it. Go methods
// cannot take type parameters, hence the function form.
func Try[T, R any](c *Chain[T], fn func(T) (R, error)) (R, string, error) {
	var (
		zero    R
		lastErr error
	)
	for i := range c.links {
		l := &c.links[i]
		var out R
		err := l.breaker.Do(func() error {
			var err error
			out, err = fn(l.value)
			return err
		})
		if err == nil {
			return out, l.name, nil
		}
		lastErr = err
		if errors.Is(err, ErrOpen) {
			slog.Debug("skipping alternative with open circuit", "name", l.name)
			continue
		}
		if i < len(c.links)-1 {
			slog.Warn("alternative failed, trying next", "name", l.name, "err", err)
		}
	}
	return zero, "", fmt.Errorf("%w: %w", ErrAllFailed, lastErr)
}
