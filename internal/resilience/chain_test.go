package resilience

import (
	"errors"
	"testing"
)

func TestTry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		failing  map[string]bool
		wantOut  string
		wantName string
		wantErr  bool
	}{
		{name: "primary succeeds", wantOut: "PRIMARY", wantName: "primary"},
		{name: "falls back", failing: map[string]bool{"primary": true}, wantOut: "BUILTIN", wantName: "builtin"},
		{name: "all fail", failing: map[string]bool{"primary": true, "builtin": true}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := NewChain("primary", "primary", BreakerConfig{})
			c.Add("builtin", "builtin")
			if c.Len() != 2 {
				t.Fatalf("Len = %d, want 2", c.Len())
			}

			out, name, err := Try(c, func(v string) (string, error) {
				if tt.failing[v] {
					return "", errBackend
				}
				return map[string]string{"primary": "PRIMARY", "builtin": "BUILTIN"}[v], nil
			})
			if tt.wantErr {
				if !errors.Is(err, ErrAllFailed) || !errors.Is(err, errBackend) {
					t.Errorf("err = %v, want ErrAllFailed wrapping the last error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out != tt.wantOut || name != tt.wantName {
				t.Errorf("got (%q, %q), want (%q, %q)", out, name, tt.wantOut, tt.wantName)
			}
		})
	}
}

func TestTry_SkipsOpenCircuit(t *testing.T) {
	t.Parallel()
	c := NewChain("primary", "primary", BreakerConfig{MaxFailures: 1})
	c.Add("builtin", "builtin")

	calls := map[string]int{}
	fn := func(v string) (string, error) {
		calls[v]++
		if v == "primary" {
			return "", errBackend
		}
		return v, nil
	}

	for range 3 {
		if _, name, err := Try(c, fn); err != nil || name != "builtin" {
			t.Fatalf("Try = %q, %v", name, err)
		}
	}
	if calls["primary"] != 1 {
		t.Errorf("primary called %d times, want 1 (circuit should open)", calls["primary"])
	}
	if calls["builtin"] != 3 {
		t.Errorf("builtin called %d times, want 3", calls["builtin"])
	}
}
