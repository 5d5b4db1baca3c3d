package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Schema creates the tables used by the run and signal repositories
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id          TEXT PRIMARY KEY,
	as_of           TIMESTAMPTZ NOT NULL,
	companies       INTEGER NOT NULL,
	signals         INTEGER NOT NULL,
	high_conviction INTEGER NOT NULL,
	plays           INTEGER NOT NULL,
	payload         JSONB NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS runs_as_of_idx ON runs (as_of DESC, created_at DESC);

CREATE TABLE IF NOT EXISTS run_signals (
	run_id           TEXT NOT NULL REFERENCES runs (run_id) ON DELETE CASCADE,
	as_of            TIMESTAMPTZ NOT NULL,
	company_id       TEXT NOT NULL,
	rank             INTEGER NOT NULL,
	recommendation   TEXT NOT NULL,
	conviction       DOUBLE PRECISION NOT NULL,
	momentum_score   DOUBLE PRECISION NOT NULL,
	moat_score       DOUBLE PRECISION NOT NULL,
	position_min_pct DOUBLE PRECISION NOT NULL,
	position_max_pct DOUBLE PRECISION NOT NULL,
	proxy_ticker     TEXT,
	PRIMARY KEY (run_id, company_id)
);
CREATE INDEX IF NOT EXISTS run_signals_company_idx ON run_signals (company_id, as_of DESC);
`

// Migrate applies Schema; every statement is idempotent
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
