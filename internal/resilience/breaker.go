// Package resilience guards calls to vocabulary backends that can go away at
// runtime.
//
// [Breaker] is a three-state circuit breaker (closed, open, half-open) that
// stops hammering a backend after repeated failures. [Chain] tries an ordered
// list of alternatives, each behind its own breaker, until one succeeds.
//
// All types are safe for concurrent use.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrOpen is returned by [Breaker.Do] while the breaker rejects calls.
var ErrOpen = errors.New("resilience: circuit open")

// State is the operating mode of a [Breaker].
type State int

const (
	// Closed forwards every call.
	Closed State = iota
	// Open rejects calls until the cooldown has elapsed.
	Open
	// HalfOpen lets a limited number of probe calls through.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	}
	return "unknown"
}

// BreakerConfig tunes a [Breaker]. Zero fields take the defaults.
type BreakerConfig struct {
	// Name labels log lines.
	Name string

	// MaxFailures is the number of consecutive failures that opens the
	// breaker. Default: 3.
	MaxFailures int

	// Cooldown is how long the breaker stays open. Default: 30s.
	Cooldown time.Duration

	// Probes is the number of successful half-open calls needed to close
	// again. Default: 1.
	Probes int
}

// Breaker implements the circuit breaker pattern.
type Breaker struct {
	cfg BreakerConfig
	now func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	inflight int
	passed   int
}

// NewBreaker returns a closed [Breaker].
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.Probes <= 0 {
		cfg.Probes = 1
	}
	return &Breaker{cfg: cfg, now: time.Now}
}

// Do runs fn unless the breaker is open. fn's error is returned unchanged;
// a rejected call returns [ErrOpen] without running fn.
func (b *Breaker) Do(fn func() error) error {
	probe, err := b.admit()
	if err != nil {
		return err
	}

	err = fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if probe {
		b.inflight--
	}
	if err != nil {
		b.fail(probe)
	} else {
		b.succeed(probe)
	}
	return err
}

// admit decides whether a call may proceed and whether it is a probe.
func (b *Breaker) admit() (probe bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == Open {
		if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
			return false, ErrOpen
		}
		b.state = HalfOpen
		b.passed = 0
		slog.Info("circuit half-open", "name", b.cfg.Name)
	}
	if b.state == HalfOpen {
		if b.inflight+b.passed >= b.cfg.Probes {
			return false, ErrOpen
		}
		b.inflight++
		return true, nil
	}
	return false, nil
}

func (b *Breaker) fail(probe bool) {
	b.failures++
	if probe || b.failures >= b.cfg.MaxFailures {
		if b.state != Open {
			slog.Warn("circuit opened", "name", b.cfg.Name, "failures", b.failures)
		}
		b.state = Open
		b.openedAt = b.now()
	}
}

func (b *Breaker) succeed(probe bool) {
	b.failures = 0
	if !probe {
		return
	}
	b.passed++
	if b.passed >= b.cfg.Probes {
		b.state = Closed
		b.passed = 0
		slog.Info("circuit closed", "name", b.cfg.Name)
	}
}

// State reports the current state. An open breaker whose cooldown has
// elapsed reports [HalfOpen].
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Open && b.now().Sub(b.openedAt) >= b.cfg.Cooldown {
		return HalfOpen
	}
	return b.state
}
