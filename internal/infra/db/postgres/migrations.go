package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL DEFAULT '',
		image      TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS listings (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL,
		title          TEXT NOT NULL,
		description    TEXT NOT NULL DEFAULT '',
		image_src      TEXT NOT NULL DEFAULT '',
		category       TEXT NOT NULL DEFAULT '',
		room_count     INTEGER NOT NULL DEFAULT 0,
		bathroom_count INTEGER NOT NULL DEFAULT 0,
		guest_count    INTEGER NOT NULL DEFAULT 0,
		location_value TEXT NOT NULL DEFAULT '',
		price          BIGINT NOT NULL CHECK (price > 0),
		currency       CHAR(3) NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL,
		version        BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id          TEXT PRIMARY KEY,
		listing_id  TEXT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
		user_id     TEXT NOT NULL,
		start_date  DATE NOT NULL,
		end_date    DATE NOT NULL,
		total_price BIGINT NOT NULL,
		currency    CHAR(3) NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL,
		CHECK (start_date < end_date),
		CONSTRAINT reservations_no_overlap EXCLUDE USING gist (
			listing_id WITH =,
			daterange(start_date, end_date, '[)') WITH &&
		)
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		token      TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS app_outbox (
		id              TEXT PRIMARY KEY,
		name            TEXT NOT NULL,
		payload         BYTEA NOT NULL,
		occurred_at     TIMESTAMPTZ NOT NULL,
		aggregate       TEXT NOT NULL,
		headers         JSONB NOT NULL DEFAULT '{}'::jsonb,
		state           TEXT NOT NULL,
		attempts        INTEGER NOT NULL DEFAULT 0,
		next_attempt_at TIMESTAMPTZ NOT NULL,
		claimed_by      TEXT,
		claimed_at      TIMESTAMPTZ,
		sent_at         TIMESTAMPTZ,
		last_error      TEXT,
		created_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS app_outbox_due_idx ON app_outbox (state, next_attempt_at)`,
}

// Apply runs the schema statements one by one.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: migration %d: %w", i+1, err)
		}
	}
	return nil
}
