package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx connection pool using the provided DSN.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 8
	cfg.MaxConnIdleTime = 5 * time.Minute
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Schema holds the tables of the document store. Bills are loaded by the
// upstream bill importer; the indexer only fills the rollup columns.
const Schema = `
CREATE TABLE IF NOT EXISTS bills (
	bill_id TEXT PRIMARY KEY,
	bill_type TEXT NOT NULL,
	number INTEGER NOT NULL,
	session INTEGER NOT NULL,
	abbreviated BOOLEAN NOT NULL DEFAULT FALSE,
	indexed BOOLEAN NOT NULL DEFAULT FALSE,
	sponsor JSONB,
	summary TEXT NOT NULL DEFAULT '',
	keywords JSONB NOT NULL DEFAULT '[]',
	last_action JSONB,
	version_codes JSONB NOT NULL DEFAULT '[]',
	versions_count INTEGER NOT NULL DEFAULT 0,
	last_version JSONB,
	last_version_on DATE,
	citation_ids JSONB NOT NULL DEFAULT '[]',
	citations JSONB NOT NULL DEFAULT '[]',
	version_info JSONB NOT NULL DEFAULT '[]',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_bills_session_indexed ON bills(session, indexed);

CREATE TABLE IF NOT EXISTS bill_versions (
	bill_version_id TEXT PRIMARY KEY,
	bill_id TEXT NOT NULL,
	version_code TEXT NOT NULL,
	version_name TEXT NOT NULL,
	issued_on DATE NOT NULL,
	urls JSONB NOT NULL DEFAULT '{}',
	full_text TEXT NOT NULL,
	citations JSONB NOT NULL DEFAULT '[]',
	citation_ids JSONB NOT NULL DEFAULT '[]',
	bill JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bill_versions_bill ON bill_versions(bill_id);

CREATE TABLE IF NOT EXISTS reports (
	id BIGSERIAL PRIMARY KEY,
	run_id UUID NOT NULL,
	source TEXT NOT NULL,
	status TEXT NOT NULL,
	message TEXT NOT NULL,
	entries JSONB NOT NULL DEFAULT '[]',
	bills INTEGER,
	versions INTEGER,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_run ON reports(run_id);`

// EnsureSchema creates the tables if needed. Having the migration in code
// lets docker-compose bootstrap everything.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, Schema)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
