// Package server exposes the tag pipeline over HTTP.
//
// Routes:
//
//	POST /v1/tags          {"text": "..."} -> {"records": [...]}
//	GET  /v1/tags?text=... same response
//	GET  /v1/tags/live     WebSocket; one text frame in, one records frame out
//	GET  /v1/vocabulary    the active correction table with labels
//
// Probe and metrics handlers are mounted when supplied through options.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/MrWong99/tagmend/internal/health"
	"github.com/MrWong99/tagmend/internal/observe"
	"github.com/MrWong99/tagmend/internal/tagging"
	"github.com/MrWong99/tagmend/internal/vocab"
)

// maxBodyBytes caps request bodies and live messages.
const maxBodyBytes = 64 << 10

// shutdownTimeout bounds graceful shutdown once the run context ends.
const shutdownTimeout = 10 * time.Second

// Processor is the part of the tag pipeline the server needs.
// [*tagging.TagPipeline] implements it.
type Processor interface {
	Process(ctx context.Context, raw string) []tagging.TagRecord
	Vocabulary() *vocab.Vocabulary
}

var _ Processor = (*tagging.TagPipeline)(nil)

// Option configures a [Server].
type Option func(*Server)

// WithMetrics records HTTP and live-session metrics to m instead of
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithHealth mounts /healthz and /readyz.
func WithHealth(h *health.Handler) Option {
	return func(s *Server) { s.health = h }
}

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metricsHandler = h }
}

// WithTLS serves HTTPS from the given PEM files.
func WithTLS(certFile, keyFile string) Option {
	return func(s *Server) {
		s.certFile = certFile
		s.keyFile = keyFile
	}
}

// Server is the tagmend HTTP API.
type Server struct {
	proc           Processor
	metrics        *observe.Metrics
	health         *health.Handler
	metricsHandler http.Handler
	certFile       string
	keyFile        string
	handler        http.Handler
}

// New builds a Server around proc.
func New(proc Processor, opts ...Option) *Server {
	s := &Server{proc: proc}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/tags", s.handlePostTags)
	mux.HandleFunc("GET /v1/tags", s.handleGetTags)
	mux.HandleFunc("GET /v1/tags/live", s.handleLive)
	mux.HandleFunc("GET /v1/vocabulary", s.handleVocabulary)
	if s.health != nil {
		s.health.Register(mux)
	}
	if s.metricsHandler != nil {
		mux.Handle("GET /metrics", s.metricsHandler)
	}
	s.handler = observe.Middleware(s.metrics)(mux)
	return s
}

// Handler returns the instrumented root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. It returns nil after a clean shutdown.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Hijacked live connections outlive Shutdown; they watch ctx instead.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr, "tls", s.certFile != "")
		var err error
		if s.certFile != "" {
			err = srv.ListenAndServeTLS(s.certFile, s.keyFile)
		} else {
			err = srv.ListenAndServe()
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
