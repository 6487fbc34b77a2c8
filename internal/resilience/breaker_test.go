package resilience

import (
	"errors"
	"testing"
	"time"
)

var errBackend = errors.New("backend down")

// fakeClock is a manually advanced time source.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(cfg BreakerConfig) (*Breaker, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	b := NewBreaker(cfg)
	b.now = clock.now
	return b, clock
}

func fail() error    { return errBackend }
func succeed() error { return nil }

func TestBreaker_OpensAfterMaxFailures(t *testing.T) {
	t.Parallel()
	b, _ := newTestBreaker(BreakerConfig{MaxFailures: 2})

	for i := range 2 {
		if err := b.Do(fail); !errors.Is(err, errBackend) {
			t.Fatalf("call %d: got %v, want backend error", i, err)
		}
	}
	if got := b.State(); got != Open {
		t.Fatalf("state = %v, want open", got)
	}

	called := false
	err := b.Do(func() error { called = true; return nil })
	if !errors.Is(err, ErrOpen) || called {
		t.Errorf("open breaker: err=%v called=%v", err, called)
	}
}

func TestBreaker_SuccessResetsFailures(t *testing.T) {
	t.Parallel()
	b, _ := newTestBreaker(BreakerConfig{MaxFailures: 2})

	_ = b.Do(fail)
	_ = b.Do(succeed)
	_ = b.Do(fail)
	if got := b.State(); got != Closed {
		t.Errorf("state = %v, want closed", got)
	}
}

func TestBreaker_HalfOpenRecovery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		probe     func() error
		wantState State
	}{
		{name: "probe succeeds", probe: succeed, wantState: Closed},
		{name: "probe fails", probe: fail, wantState: Open},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, clock := newTestBreaker(BreakerConfig{MaxFailures: 1, Cooldown: time.Minute})
			_ = b.Do(fail)

			clock.advance(30 * time.Second)
			if got := b.State(); got != Open {
				t.Fatalf("before cooldown: state = %v, want open", got)
			}
			clock.advance(31 * time.Second)
			if got := b.State(); got != HalfOpen {
				t.Fatalf("after cooldown: state = %v, want half-open", got)
			}

			_ = b.Do(tt.probe)
			if got := b.State(); got != tt.wantState {
				t.Errorf("after probe: state = %v, want %v", got, tt.wantState)
			}
		})
	}
}

func TestBreaker_ProbeBudget(t *testing.T) {
	t.Parallel()
	b, clock := newTestBreaker(BreakerConfig{MaxFailures: 1, Cooldown: time.Second, Probes: 2})
	_ = b.Do(fail)
	clock.advance(2 * time.Second)

	// A probe in flight blocks further probes beyond the budget.
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- b.Do(func() error { <-release; return nil })
	}()
	for {
		b.mu.Lock()
		inflight := b.inflight
		b.mu.Unlock()
		if inflight == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if err := b.Do(succeed); err != nil {
		t.Fatalf("second probe rejected: %v", err)
	}
	if err := b.Do(succeed); !errors.Is(err, ErrOpen) {
		t.Fatalf("third call: got %v, want ErrOpen", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first probe: %v", err)
	}
	if got := b.State(); got != Closed {
		t.Errorf("state = %v, want closed", got)
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()
	for s, want := range map[State]string{Closed: "closed", Open: "open", HalfOpen: "half-open", State(9): "unknown"} {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}
