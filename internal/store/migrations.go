package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

// migration is a single schema migration step.
type migration struct {
	version     int
	description string
	up          func(ctx context.Context, tx pgx.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new steps with incrementing version numbers.
var migrations = []migration{
	{
		version:     1,
		description: "initial schema",
		up: func(ctx context.Context, tx pgx.Tx) error {
			_, err := tx.Exec(ctx, `
CREATE TABLE IF NOT EXISTS posts (
    id BIGSERIAL PRIMARY KEY,
    source_type TEXT NOT NULL,
    source_id BIGINT NOT NULL,
    post_url TEXT,
    published_date DATE NOT NULL,
    positive_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
    negative_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
    neutral_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
    comment_count INTEGER NOT NULL DEFAULT 0,
    positive_remarks TEXT NOT NULL DEFAULT '',
    negative_remarks TEXT NOT NULL DEFAULT '',
    neutral_remarks TEXT NOT NULL DEFAULT '',
    conclusion TEXT NOT NULL DEFAULT '',
    popular_comments JSONB NOT NULL DEFAULT '[]',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_posts_published_date ON posts (published_date);
CREATE INDEX IF NOT EXISTS idx_posts_source_url ON posts (source_type, source_id, post_url);

CREATE TABLE IF NOT EXISTS comments (
    id BIGSERIAL PRIMARY KEY,
    post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
    content TEXT NOT NULL,
    sentiment TEXT NOT NULL DEFAULT 'neutral',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS daily_reports (
    id BIGSERIAL PRIMARY KEY,
    report_date DATE NOT NULL UNIQUE,
    total_posts_analyzed INTEGER NOT NULL DEFAULT 0,
    total_comments_analyzed INTEGER NOT NULL DEFAULT 0,
    total_sources INTEGER NOT NULL DEFAULT 0,
    overall_positive DOUBLE PRECISION NOT NULL DEFAULT 0,
    overall_negative DOUBLE PRECISION NOT NULL DEFAULT 0,
    overall_neutral DOUBLE PRECISION NOT NULL DEFAULT 0,
    summary_text TEXT NOT NULL DEFAULT '',
    summary_source TEXT NOT NULL DEFAULT 'algorithmic',
    generated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS report_source_summaries (
    id BIGSERIAL PRIMARY KEY,
    report_id BIGINT NOT NULL REFERENCES daily_reports(id) ON DELETE CASCADE,
    source_type TEXT NOT NULL,
    source_id BIGINT NOT NULL DEFAULT 0,
    source_name TEXT NOT NULL,
    post_count INTEGER NOT NULL DEFAULT 0,
    comment_count INTEGER NOT NULL DEFAULT 0,
    engagement_count INTEGER NOT NULL DEFAULT 0,
    avg_positive DOUBLE PRECISION NOT NULL DEFAULT 0,
    avg_negative DOUBLE PRECISION NOT NULL DEFAULT 0,
    avg_neutral DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_summaries_report_id ON report_source_summaries (report_id);
`)
			return err
		},
	},
	{
		version:     2,
		description: "source registries (read-only here, maintained elsewhere)",
		up: func(ctx context.Context, tx pgx.Tx) error {
			_, err := tx.Exec(ctx, `
CREATE TABLE IF NOT EXISTS candidates (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    party_name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS political_parties (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS news_media (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL
);
`)
			return err
		},
	},
}

// Migrate brings the schema up to date. Each pending step runs in its own
// transaction and is recorded in schema_migrations.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    description TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var current int
	err = p.pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := p.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.version, err)
		}

		if err := m.up(ctx, tx); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.description, err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO schema_migrations (version, description) VALUES ($1, $2)`,
			m.version, m.description); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
		}

		logrus.Infof("Applied migration %d: %s", m.version, m.description)
	}

	return nil
}
