package archive

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Schema creates the buys table.
const Schema = `
CREATE TABLE IF NOT EXISTS buys (
	id                  UUID PRIMARY KEY,
	tx_hash             TEXT NOT NULL UNIQUE,
	pair                TEXT NOT NULL,
	spent               NUMERIC NOT NULL,
	spent_symbol        TEXT NOT NULL,
	spent_estimated     BOOLEAN NOT NULL DEFAULT FALSE,
	received            NUMERIC NOT NULL,
	spent_usd           DOUBLE PRECISION,
	token_price_in_base DOUBLE PRECISION,
	token_price_usd     DOUBLE PRECISION,
	market_cap_base     DOUBLE PRECISION,
	tier                TEXT NOT NULL,
	sender              TEXT,
	dex_name            TEXT,
	executed_at         TIMESTAMPTZ NOT NULL,
	recorded_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS buys_executed_at_idx ON buys (executed_at DESC);
`

// Execer runs a statement without returning rows.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// EnsureSchema creates the archive table if it does not exist.
func EnsureSchema(ctx context.Context, db Execer) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create buys table: %w", err)
	}
	return nil
}
