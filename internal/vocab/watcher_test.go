package vocab_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrWong99/tagmend/internal/vocab"
)

const watcherUpdatedYAML = `
corrections:
  농구: [농구, 농그]
translations:
  농구: Basketball
`

func writeBundle(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %q: %v", path, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %q: %v", path, err)
	}
}

func TestWatcher_InitialLoad(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "v.yaml")
	writeBundle(t, path, sampleYAML, time.Now())

	store := &vocab.Store{}
	if _, err := vocab.NewWatcher(path, store); err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if got := store.Vocabulary().Len(); got != 3 {
		t.Errorf("Len: got %d, want 3", got)
	}
}

func TestWatcher_InitialLoadInvalid(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "v.yaml")
	writeBundle(t, path, "bogus: true\n", time.Now())

	if _, err := vocab.NewWatcher(path, &vocab.Store{}); err == nil {
		t.Error("expected error for invalid initial bundle")
	}
}

func TestWatcher_Check(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "v.yaml")
	base := time.Now().Add(-time.Hour)
	writeBundle(t, path, sampleYAML, base)

	var calls, failures int
	var gotOld, gotNew *vocab.Vocabulary
	store := &vocab.Store{}
	w, err := vocab.NewWatcher(path, store,
		vocab.WithOnChange(func(old, new *vocab.Vocabulary) {
			calls++
			gotOld, gotNew = old, new
		}),
		vocab.WithOnError(func(error) { failures++ }),
	)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	first := store.Vocabulary()

	if w.Check() {
		t.Error("Check reported a change for an untouched file")
	}

	// Touched but identical content.
	writeBundle(t, path, sampleYAML, base.Add(time.Minute))
	if w.Check() {
		t.Error("Check reported a change for identical content")
	}

	// Invalid revision keeps the previous snapshot.
	writeBundle(t, path, "corrections: [broken]\n", base.Add(2*time.Minute))
	if w.Check() {
		t.Error("Check installed an invalid revision")
	}
	if store.Vocabulary() != first {
		t.Error("store changed after invalid revision")
	}
	if failures != 1 {
		t.Errorf("onError calls: got %d, want 1", failures)
	}

	writeBundle(t, path, watcherUpdatedYAML, base.Add(3*time.Minute))
	if !w.Check() {
		t.Fatal("Check missed a valid revision")
	}
	if calls != 1 {
		t.Errorf("onChange calls: got %d, want 1", calls)
	}
	if gotOld != first || gotNew != store.Vocabulary() {
		t.Error("onChange received wrong snapshots")
	}
	if got := store.Vocabulary().Translate("농구"); got != "Basketball" {
		t.Errorf("Translate after reload: got %q", got)
	}
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "v.yaml")
	writeBundle(t, path, sampleYAML, time.Now().Add(-time.Hour))

	store := &vocab.Store{}
	w, err := vocab.NewWatcher(path, store, vocab.WithInterval(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	writeBundle(t, path, watcherUpdatedYAML, time.Now())
	deadline := time.After(2 * time.Second)
	for store.Vocabulary().Translate("농구") != "Basketball" {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
