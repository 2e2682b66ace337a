package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ScreenshotRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/mcp startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS screenshots (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	storage_key TEXT NOT NULL UNIQUE,
	size_bytes BIGINT NOT NULL,
	mime_type TEXT NOT NULL,
	uploaded_at TIMESTAMPTZ NOT NULL,
	analyzed_at TIMESTAMPTZ,
	is_important BOOLEAN NOT NULL DEFAULT FALSE,
	confidence DOUBLE PRECISION,
	retention_policy TEXT NOT NULL DEFAULT '',
	importance_level TEXT NOT NULL DEFAULT '',
	extracted_text TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS categories (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS screenshot_categories (
	screenshot_id TEXT NOT NULL REFERENCES screenshots(id) ON DELETE CASCADE,
	category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
	confidence DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (screenshot_id, category_id)
);

CREATE TABLE IF NOT EXISTS analysis_results (
	id BIGSERIAL PRIMARY KEY,
	screenshot_id TEXT NOT NULL REFERENCES screenshots(id) ON DELETE CASCADE,
	analysis_type TEXT NOT NULL,
	result JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_screenshots_uploaded_at ON screenshots(uploaded_at DESC);
CREATE INDEX IF NOT EXISTS idx_screenshots_important ON screenshots(is_important);
CREATE INDEX IF NOT EXISTS idx_analysis_results_screenshot ON analysis_results(screenshot_id, created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
