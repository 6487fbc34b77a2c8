package pgstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/text/language"

	"github.com/MrWong99/tagmend/internal/vocab"
)

var _ vocab.Source = (*Store)(nil)

// Store is a PostgreSQL-backed vocabulary source. Safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to dsn, pings the server and runs [Migrate].
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pgstore: parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgstore: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgstore: ping: %w", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgstore: migrate: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping checks that the database is reachable. Used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Load implements [vocab.Source]. Corrections are read in position order.
func (s *Store) Load(ctx context.Context) (*vocab.Vocabulary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT canonical, variants FROM vocab_corrections ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("pgstore: load corrections: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (vocab.Entry, error) {
		var e vocab.Entry
		err := row.Scan(&e.Canonical, &e.Variants)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("pgstore: scan corrections: %w", err)
	}

	rows, err = s.pool.Query(ctx, `SELECT token, label FROM vocab_translations`)
	if err != nil {
		return nil, fmt.Errorf("pgstore: load translations: %w", err)
	}
	translations := make(map[string]string)
	var token, label string
	if _, err := pgx.ForEachRow(rows, []any{&token, &label}, func() error {
		translations[token] = label
		return nil
	}); err != nil {
		return nil, fmt.Errorf("pgstore: scan translations: %w", err)
	}

	src, dst := language.Korean, language.English
	var srcTag, dstTag string
	err = s.pool.QueryRow(ctx,
		`SELECT source_language, target_language FROM vocab_meta WHERE id`).Scan(&srcTag, &dstTag)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("pgstore: load meta: %w", err)
	default:
		src, dst = language.Make(srcTag), language.Make(dstTag)
	}

	for _, e := range entries {
		if len(e.Variants) == 0 {
			slog.Warn("pgstore: entry has no variants and will never match", "canonical", e.Canonical)
		}
	}
	return vocab.New(entries, translations, vocab.WithLanguages(src, dst)), nil
}

// Import replaces the stored vocabulary with v in a single transaction.
// The bundle is validated first, so an import never leaves a table that
// [Store.Load] would reject.
func (s *Store) Import(ctx context.Context, v *vocab.Vocabulary) error {
	if v == nil {
		return vocab.ErrNoVocabulary
	}
	if err := vocab.Validate(vocab.Export(v)); err != nil {
		return fmt.Errorf("pgstore: import: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pgstore: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	for _, stmt := range []string{
		`DELETE FROM vocab_corrections`,
		`DELETE FROM vocab_translations`,
	} {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("pgstore: clear: %w", err)
		}
	}

	batch := &pgx.Batch{}
	for i, e := range v.Entries() {
		variants := e.Variants
		if variants == nil {
			variants = []string{}
		}
		batch.Queue(
			`INSERT INTO vocab_corrections (position, canonical, variants) VALUES ($1, $2, $3)`,
			i, e.Canonical, variants,
		)
	}
	for token, label := range v.Translations() {
		batch.Queue(
			`INSERT INTO vocab_translations (token, label) VALUES ($1, $2)`,
			token, label,
		)
	}
	batch.Queue(`
		INSERT INTO vocab_meta (id, source_language, target_language, updated_at)
		VALUES (TRUE, $1, $2, now())
		ON CONFLICT (id) DO UPDATE
		SET source_language = EXCLUDED.source_language,
		    target_language = EXCLUDED.target_language,
		    updated_at      = now()`,
		v.SourceLanguage().String(), v.TargetLanguage().String(),
	)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("pgstore: insert: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("pgstore: commit: %w", err)
	}
	slog.Info("pgstore: vocabulary imported", "entries", v.Len())
	return nil
}
