package vocab

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrSourceNotRegistered is returned by [Registry.Create] when no factory has
// been registered under the requested source name.
var ErrSourceNotRegistered = errors.New("vocab: source not registered")

// Source produces vocabulary snapshots.
type Source interface {
	// Load returns a freshly built [Vocabulary]. It must respect ctx for any
	// I/O it performs.
	Load(ctx context.Context) (*Vocabulary, error)
}

// SourceConfig is the configuration handed to a source factory.
type SourceConfig struct {
	// Name selects the registered source ("builtin", "file", "postgres").
	Name string

	// Path is the bundle file for the "file" source.
	Path string

	// PostgresDSN is the connection string for the "postgres" source.
	PostgresDSN string
}

// BuiltinSource serves the embedded [Default] vocabulary.
type BuiltinSource struct{}

// Load implements [Source].
func (BuiltinSource) Load(context.Context) (*Vocabulary, error) {
	return Default(), nil
}

// FileSource reads a YAML bundle from Path on every Load.
type FileSource struct {
	Path string
}

// Load implements [Source].
func (s FileSource) Load(ctx context.Context) (*Vocabulary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(s.Path)
}

// Factory builds a [Source] from its configuration.
type Factory func(SourceConfig) (Source, error)

// Registry maps source names to factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a [Registry] with the "builtin" and "file" sources
// registered. Database-backed sources are registered by the caller to keep
// this package free of driver imports.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register("builtin", func(SourceConfig) (Source, error) {
		return BuiltinSource{}, nil
	})
	r.Register("file", func(cfg SourceConfig) (Source, error) {
		if cfg.Path == "" {
			return nil, errors.New("vocab: file source requires a path")
		}
		return FileSource{Path: cfg.Path}, nil
	})
	return r
}

// Register installs factory under name, replacing any previous registration.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Names returns the registered source names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create builds the source named by cfg.Name. An empty name selects
// "builtin".
func (r *Registry) Create(cfg SourceConfig) (Source, error) {
	name := cfg.Name
	if name == "" {
		name = "builtin"
	}
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSourceNotRegistered, name)
	}
	src, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("vocab: create source %q: %w", name, err)
	}
	return src, nil
}
