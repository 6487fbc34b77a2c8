// Command tagmend corrects and translates Korean tags.
//
// Usage:
//
//	tagmend [serve] [-config config.yaml]       run the HTTP API (and Discord bot)
//	tagmend check [-config f] [-json] <text>    print the records for one input
//	tagmend import -config f -from vocab.yaml   load a bundle into PostgreSQL
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/MrWong99/tagmend/internal/app"
	"github.com/MrWong99/tagmend/internal/config"
	"github.com/MrWong99/tagmend/internal/observe"
	"github.com/MrWong99/tagmend/internal/tagging"
	"github.com/MrWong99/tagmend/internal/vocab"
	"github.com/MrWong99/tagmend/internal/vocab/pgstore"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		return runServe(args, stderr)
	case "check":
		return runCheck(args, stdout, stderr)
	case "import":
		return runImport(args, stdout, stderr)
	case "help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "tagmend: unknown command %q\n", cmd)
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage:")
	fmt.Fprintln(w, "  tagmend [serve] [-config config.yaml]")
	fmt.Fprintln(w, "  tagmend check [-config config.yaml] [-json] <text>")
	fmt.Fprintln(w, "  tagmend import -config config.yaml -from vocab.yaml")
}

// ── serve ─────────────────────────────────────────────────────────────────────

func runServe(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "config.yaml", "path to the YAML configuration file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := new(slog.LevelVar)
	slog.SetDefault(newLogger(stderr, level))

	// The callback only fires from Run, after application is set.
	var application *app.App
	cw, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		application.ApplyConfig(old, new)
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(stderr, "tagmend: config file %q not found; run with -config or create one\n", *configPath)
		} else {
			fmt.Fprintf(stderr, "tagmend: %v\n", err)
		}
		return 1
	}
	cfg := cw.Current()
	level.Set(cfg.Server.LogLevel.Level())

	slog.Info("tagmend starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}

	application, err = app.New(ctx, cfg,
		app.WithMetrics(telemetry.Metrics),
		app.WithMetricsHandler(telemetry.Handler()),
		app.WithLogLevel(level),
		app.WithConfigWatcher(cw),
	)
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		_ = telemetry.Shutdown(context.Background())
		return 1
	}

	printStartupSummary(stderr, cfg, application.Vocabulary())

	code := 0
	if err := application.Run(ctx); err != nil {
		slog.Error("run error", "err", err)
		code = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	slog.Info("stopping")
	if err := application.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		code = 1
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		slog.Warn("telemetry shutdown error", "err", err)
	}
	slog.Info("goodbye")
	return code
}

func printStartupSummary(w io.Writer, cfg *config.Config, v *vocab.Vocabulary) {
	row := func(k string, val any) { fmt.Fprintf(w, "║  %-16s: %-20v ║\n", k, val) }

	fmt.Fprintln(w, "╔═════════════════════════════════════════╗")
	fmt.Fprintln(w, "║          tagmend — startup summary      ║")
	fmt.Fprintln(w, "╠═════════════════════════════════════════╣")
	row("Vocabulary", cfg.Vocabulary.Source)
	row("Entries", v.Len())
	row("Translations", len(v.Translations()))
	row("Threshold", cfg.Matcher.Threshold)
	if cfg.Discord.Token != "" {
		row("Discord", "connected")
	} else {
		row("Discord", "(disabled)")
	}
	row("Listen addr", cfg.Server.ListenAddr)
	fmt.Fprintln(w, "╚═════════════════════════════════════════╝")
}

// ── check ─────────────────────────────────────────────────────────────────────

func runCheck(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "optional YAML configuration file; defaults to the built-in vocabulary")
	asJSON := fs.Bool("json", false, "print records as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "tagmend check: missing tag text")
		return 2
	}
	text := strings.Join(fs.Args(), " ")

	slog.SetDefault(newLogger(stderr, nil))

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(stderr, "tagmend: %v\n", err)
			return 1
		}
	}

	ctx := context.Background()
	reg := vocab.NewRegistry()
	var pg *pgstore.Store
	reg.Register(config.SourcePostgres, func(sc vocab.SourceConfig) (vocab.Source, error) {
		st, err := pgstore.NewStore(ctx, sc.PostgresDSN)
		pg = st
		return st, err
	})
	v, served, err := app.LoadVocabulary(ctx, reg, cfg.Vocabulary)
	if pg != nil {
		pg.Close()
	}
	if err != nil {
		fmt.Fprintf(stderr, "tagmend: %v\n", err)
		return 1
	}
	slog.Debug("vocabulary loaded", "source", served, "entries", v.Len())

	records := app.BuildPipeline(cfg, tagging.FromVocabulary(v), nil).Process(ctx, text)
	if *asJSON {
		return printJSON(stdout, stderr, records)
	}
	printTable(stdout, records)
	return 0
}

type checkRecord struct {
	tagging.TagRecord
	Tooltip string `json:"tooltip"`
}

func printJSON(stdout, stderr io.Writer, records []tagging.TagRecord) int {
	out := make([]checkRecord, len(records))
	for i, r := range records {
		out[i] = checkRecord{TagRecord: r, Tooltip: r.Tooltip()}
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{"records": out}); err != nil {
		fmt.Fprintf(stderr, "tagmend: encode: %v\n", err)
		return 1
	}
	return 0
}

func printTable(w io.Writer, records []tagging.TagRecord) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORIGINAL\tCORRECTED\tLABEL\tCHANGES")
	for _, r := range records {
		var changes []string
		if r.WasCorrected {
			changes = append(changes, "corrected")
		}
		if r.WasTranslated {
			changes = append(changes, "translated")
		}
		if len(changes) == 0 {
			changes = append(changes, "-")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Original, r.Corrected, r.DisplayLabel, strings.Join(changes, ","))
	}
	_ = tw.Flush()
}

// ── import ────────────────────────────────────────────────────────────────────

func runImport(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "config.yaml", "YAML configuration file holding vocabulary.postgres_dsn")
	from := fs.String("from", "", "vocabulary bundle to import")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *from == "" {
		fmt.Fprintln(stderr, "tagmend import: -from is required")
		return 2
	}

	slog.SetDefault(newLogger(stderr, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "tagmend: %v\n", err)
		return 1
	}
	if cfg.Vocabulary.PostgresDSN == "" {
		fmt.Fprintln(stderr, "tagmend import: vocabulary.postgres_dsn is not set")
		return 1
	}

	v, err := vocab.LoadFile(*from)
	if err != nil {
		fmt.Fprintf(stderr, "tagmend: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := pgstore.NewStore(ctx, cfg.Vocabulary.PostgresDSN)
	if err != nil {
		fmt.Fprintf(stderr, "tagmend: %v\n", err)
		return 1
	}
	defer st.Close()

	if err := st.Import(ctx, v); err != nil {
		fmt.Fprintf(stderr, "tagmend: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "imported %d corrections and %d translations from %s\n", v.Len(), len(v.Translations()), *from)
	return 0
}

// newLogger builds the text logger on w. A nil level logs at info.
func newLogger(w io.Writer, level *slog.LevelVar) *slog.Logger {
	opts := &slog.HandlerOptions{}
	if level != nil {
		opts.Level = level
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
