package journal

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS executions (
	id          UUID PRIMARY KEY,
	address     TEXT NOT NULL,
	observed_at TIMESTAMPTZ NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL,
	attempts    INT NOT NULL,
	succeeded   BOOLEAN NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	buy_amount  NUMERIC NOT NULL
);
CREATE INDEX IF NOT EXISTS executions_address_idx ON executions (address);
CREATE INDEX IF NOT EXISTS executions_started_at_idx ON executions (started_at);
`

// EnsureSchema creates the executions table if it does not exist.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure journal schema: %w", err)
	}
	return nil
}
