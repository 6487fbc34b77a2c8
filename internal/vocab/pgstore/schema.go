// Package pgstore keeps a tag vocabulary in PostgreSQL.
//
// Corrections live in vocab_corrections, ordered by an explicit position
// column so tie-breaking survives the round trip. Translations live in
// vocab_translations.
//
// Usage:
//
//	store, err := pgstore.NewStore(ctx, dsn)
//	if err != nil { … }
//	defer store.Close()
//
//	_ = store.Import(ctx, vocab.Default())
//	v, _ := store.Load(ctx)
package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ddlCorrections = `
CREATE TABLE IF NOT EXISTS vocab_corrections (
    position   INT     PRIMARY KEY,
    canonical  TEXT    NOT NULL UNIQUE,
    variants   TEXT[]  NOT NULL DEFAULT '{}'
);
`

const ddlTranslations = `
CREATE TABLE IF NOT EXISTS vocab_translations (
    token  TEXT  PRIMARY KEY,
    label  TEXT  NOT NULL
);
`

const ddlMeta = `
CREATE TABLE IF NOT EXISTS vocab_meta (
    id               BOOLEAN      PRIMARY KEY DEFAULT TRUE CHECK (id),
    source_language  TEXT         NOT NULL DEFAULT 'ko',
    target_language  TEXT         NOT NULL DEFAULT 'en',
    updated_at       TIMESTAMPTZ  NOT NULL DEFAULT now()
);
`

// Migrate creates the vocabulary tables. It is idempotent and safe to call on
// every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range []string{ddlCorrections, ddlTranslations, ddlMeta} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("pgstore migrate: %w", err)
		}
	}
	return nil
}
