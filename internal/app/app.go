// Package app wires the tagmend subsystems into a running service.
//
// New loads the vocabulary, builds the tag pipeline and assembles the HTTP
// server and the optional Discord bot. Run serves until the context ends and
// Shutdown releases what New opened. Settings that can change at runtime
// arrive through [App.ApplyConfig].
//
// For testing, inject doubles via functional options (WithRegistry,
// WithMetrics, etc.).
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/tagmend/internal/config"
	"github.com/MrWong99/tagmend/internal/discord"
	"github.com/MrWong99/tagmend/internal/discord/commands"
	"github.com/MrWong99/tagmend/internal/health"
	"github.com/MrWong99/tagmend/internal/observe"
	"github.com/MrWong99/tagmend/internal/resilience"
	"github.com/MrWong99/tagmend/internal/server"
	"github.com/MrWong99/tagmend/internal/tagging"
	"github.com/MrWong99/tagmend/internal/vocab"
	"github.com/MrWong99/tagmend/internal/vocab/pgstore"
)

// App owns all subsystem lifetimes.
type App struct {
	cfg            *config.Config
	registry       *vocab.Registry
	metrics        *observe.Metrics
	metricsHandler http.Handler
	levelVar       *slog.LevelVar
	cfgWatcher     *config.Watcher

	store        *vocab.Store
	vocabWatcher *vocab.Watcher
	vocabPoller  *vocab.Poller
	pipeline     atomic.Pointer[tagging.TagPipeline]
	server       *server.Server
	bot          *discord.Bot

	// pgMu guards pgStore and closers, which the vocabulary poller may
	// touch when the database comes up after startup.
	pgMu    sync.Mutex
	pgStore *pgstore.Store

	// closers are called in order during Shutdown.
	closers  []func() error
	stopOnce sync.Once
}

// Option is a functional option for New.
type Option func(*App)

// WithRegistry replaces the vocabulary source registry. The "postgres"
// source is added to it unless already registered.
func WithRegistry(r *vocab.Registry) Option {
	return func(a *App) { a.registry = r }
}

// WithMetrics records all metrics to m instead of [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithMetricsHandler serves h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(a *App) { a.metricsHandler = h }
}

// WithLogLevel lets [App.ApplyConfig] adjust the log level at runtime.
func WithLogLevel(lv *slog.LevelVar) Option {
	return func(a *App) { a.levelVar = lv }
}

// WithConfigWatcher polls the config file while the app runs. The watcher's
// callback is expected to call [App.ApplyConfig].
func WithConfigWatcher(w *config.Watcher) Option {
	return func(a *App) { a.cfgWatcher = w }
}

// New creates an App from cfg. It loads the vocabulary synchronously, so a
// broken source fails here rather than at the first request.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}
	if a.registry == nil {
		a.registry = vocab.NewRegistry()
	}
	a.registerPostgres(ctx)

	if err := a.initVocabulary(ctx); err != nil {
		a.closeAll()
		return nil, fmt.Errorf("app: init vocabulary: %w", err)
	}

	a.pipeline.Store(BuildPipeline(cfg, a.store, a.metrics))
	a.initServer()

	if err := a.initDiscord(ctx); err != nil {
		a.closeAll()
		return nil, fmt.Errorf("app: init discord: %w", err)
	}
	return a, nil
}

// registerPostgres adds the "postgres" source. The store is opened once,
// kept for the readiness check and closed on shutdown.
func (a *App) registerPostgres(ctx context.Context) {
	for _, name := range a.registry.Names() {
		if name == config.SourcePostgres {
			return
		}
	}
	a.registry.Register(config.SourcePostgres, func(sc vocab.SourceConfig) (vocab.Source, error) {
		a.pgMu.Lock()
		defer a.pgMu.Unlock()
		if a.pgStore != nil {
			return a.pgStore, nil
		}
		st, err := pgstore.NewStore(ctx, sc.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.pgStore = st
		a.closers = append(a.closers, func() error { st.Close(); return nil })
		return st, nil
	})
}

func (a *App) initVocabulary(ctx context.Context) error {
	vc := a.cfg.Vocabulary
	a.store = vocab.NewStore(nil)
	served := vc.Source

	if vc.Source == config.SourceFile && vc.ReloadInterval > 0 {
		w, err := vocab.NewWatcher(vc.Path, a.store,
			vocab.WithInterval(vc.ReloadInterval),
			vocab.WithOnChange(a.vocabularyChanged),
			vocab.WithOnError(a.vocabularyFailed),
		)
		if err != nil {
			return err
		}
		a.vocabWatcher = w
	} else {
		v, name, err := LoadVocabulary(ctx, a.registry, vc)
		if err != nil {
			return err
		}
		a.store.Swap(v)
		served = name
	}

	if vc.Source == config.SourcePostgres && vc.ReloadInterval > 0 {
		primary := sourceConfig(vc, vc.Source)
		src := vocab.SourceFunc(func(ctx context.Context) (*vocab.Vocabulary, error) {
			s, err := a.registry.Create(primary)
			if err != nil {
				return nil, err
			}
			return s.Load(ctx)
		})
		a.vocabPoller = vocab.NewPoller(src, a.store, vocab.PollerConfig{
			Interval: vc.ReloadInterval,
			Breaker:  resilience.BreakerConfig{Name: "vocabulary/" + vc.Source},
			OnChange: a.vocabularyChanged,
			OnError:  a.vocabularyFailed,
		})
	}

	v := a.store.Vocabulary()
	a.metrics.RecordVocabularyReload(ctx, nil, 0, v.Len())
	slog.Info("vocabulary loaded", "source", served, "entries", v.Len(), "translations", len(v.Translations()))
	return nil
}

func (a *App) vocabularyChanged(old, new *vocab.Vocabulary) {
	a.metrics.RecordVocabularyReload(context.Background(), nil, old.Len(), new.Len())
}

func (a *App) vocabularyFailed(err error) {
	a.metrics.RecordVocabularyReload(context.Background(), err, 0, 0)
}

func (a *App) initServer() {
	checkers := []health.Checker{health.VocabularyCheck(a.store)}
	a.pgMu.Lock()
	if a.pgStore != nil {
		checkers = append(checkers, health.PingCheck(config.SourcePostgres, a.pgStore))
	}
	a.pgMu.Unlock()

	opts := []server.Option{
		server.WithMetrics(a.metrics),
		server.WithHealth(health.New(checkers...)),
	}
	if a.metricsHandler != nil {
		opts = append(opts, server.WithMetricsHandler(a.metricsHandler))
	}
	if tls := a.cfg.Server.TLS; tls != nil {
		opts = append(opts, server.WithTLS(tls.CertFile, tls.KeyFile))
	}
	a.server = server.New(a, opts...)
}

func (a *App) initDiscord(ctx context.Context) error {
	if a.cfg.Discord.Token == "" {
		return nil
	}
	bot, err := discord.New(ctx, discord.Config{
		Token:   a.cfg.Discord.Token,
		GuildID: a.cfg.Discord.GuildID,
	})
	if err != nil {
		return err
	}
	commands.NewTagCommands(a, a.metrics).Register(bot.Router())
	a.bot = bot
	a.closers = append(a.closers, bot.Close)
	slog.Info("discord bot connected", "guild_id", a.cfg.Discord.GuildID)
	return nil
}

// Process runs raw through the current pipeline.
func (a *App) Process(ctx context.Context, raw string) []tagging.TagRecord {
	return a.pipeline.Load().Process(ctx, raw)
}

// Vocabulary returns the vocabulary snapshot currently served.
func (a *App) Vocabulary() *vocab.Vocabulary {
	return a.store.Vocabulary()
}

// Handler returns the HTTP handler of the app's server.
func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

// ApplyConfig applies the hot-reloadable differences between old and new:
// the log level and the matcher and normalizer settings. Other changes are
// logged as needing a restart.
func (a *App) ApplyConfig(old, new *config.Config) {
	d := config.Diff(old, new)

	if d.LogLevelChanged && a.levelVar != nil {
		a.levelVar.Set(d.NewLogLevel.Level())
		slog.Info("log level changed", "level", d.NewLogLevel)
	}
	if d.PipelineChanged() {
		a.pipeline.Store(BuildPipeline(new, a.store, a.metrics))
		slog.Info("tag pipeline rebuilt",
			"threshold", new.Matcher.Threshold,
			"compose_nfc", new.Normalize.ComposeNFC,
		)
	}
	if len(d.RestartRequired) > 0 {
		slog.Warn("config changes need a restart to take effect", "sections", d.RestartRequired)
	}
}

// Run serves HTTP, polls the watchers and runs the Discord bot until ctx is
// cancelled or one of them fails. It returns nil after a clean stop.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.server.ListenAndServe(gctx, a.cfg.Server.ListenAddr)
	})
	if a.vocabWatcher != nil {
		g.Go(func() error { return a.vocabWatcher.Run(gctx) })
	}
	if a.vocabPoller != nil {
		g.Go(func() error { return a.vocabPoller.Run(gctx) })
	}
	if a.cfgWatcher != nil {
		g.Go(func() error { return a.cfgWatcher.Run(gctx) })
	}
	if a.bot != nil {
		g.Go(func() error { return a.bot.Run(gctx) })
	}

	slog.Info("app running", "listen_addr", a.cfg.Server.ListenAddr, "discord", a.bot != nil)
	return g.Wait()
}

// Shutdown releases everything New opened. It is safe to call more than
// once; later calls are no-ops.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		a.pgMu.Lock()
		defer a.pgMu.Unlock()
		slog.Info("shutting down", "closers", len(a.closers))
		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}
		slog.Info("shutdown complete")
	})
	return shutdownErr
}

// closeAll runs the closers collected so far after a failed New.
func (a *App) closeAll() {
	a.pgMu.Lock()
	defer a.pgMu.Unlock()
	for _, closer := range a.closers {
		_ = closer()
	}
}
