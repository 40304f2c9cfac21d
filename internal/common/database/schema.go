package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements creates every table the portal reads or writes. Each
// statement is idempotent so EnsureSchema can run on every start.
var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS news_items (
		id           SERIAL PRIMARY KEY,
		title        TEXT NOT NULL,
		category     TEXT NOT NULL DEFAULT '',
		author       TEXT NOT NULL DEFAULT '',
		publish_date TEXT NOT NULL DEFAULT '',
		views        INTEGER NOT NULL DEFAULT 0,
		featured     BOOLEAN NOT NULL DEFAULT FALSE,
		link         TEXT NOT NULL DEFAULT '',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS newsletters (
		id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title        TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		content      TEXT NOT NULL DEFAULT '',
		image        TEXT NOT NULL DEFAULT '',
		author       TEXT NOT NULL DEFAULT '',
		publish_date TEXT NOT NULL DEFAULT '',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS materials (
		id         SERIAL PRIMARY KEY,
		title      TEXT NOT NULL,
		link       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS research_reports (
		id             SERIAL PRIMARY KEY,
		title          TEXT NOT NULL,
		stock          TEXT NOT NULL DEFAULT '',
		company        TEXT NOT NULL DEFAULT '',
		author         TEXT NOT NULL DEFAULT '',
		author_firm    TEXT NOT NULL DEFAULT '',
		report_date    TEXT NOT NULL DEFAULT '',
		sector         TEXT NOT NULL DEFAULT '',
		report_type    TEXT NOT NULL,
		rating         TEXT NOT NULL,
		target_price   NUMERIC(14,2) NOT NULL DEFAULT 0,
		current_price  NUMERIC(14,2) NOT NULL DEFAULT 0,
		upside         NUMERIC(8,2) NOT NULL DEFAULT 0,
		pages          INTEGER NOT NULL DEFAULT 0,
		views          INTEGER NOT NULL DEFAULT 0,
		recommendation TEXT NOT NULL DEFAULT '',
		tags           TEXT[] NOT NULL DEFAULT '{}',
		summary        TEXT NOT NULL DEFAULT '',
		pdf_url        TEXT NOT NULL DEFAULT '',
		published      BOOLEAN NOT NULL DEFAULT FALSE,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_research_reports_sector ON research_reports (sector)`,
	`CREATE TABLE IF NOT EXISTS partner_requests (
		id         UUID PRIMARY KEY,
		type       TEXT NOT NULL,
		sub_type   TEXT NOT NULL DEFAULT '',
		name       TEXT NOT NULL,
		mobile     TEXT NOT NULL,
		email      TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'Pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS leads (
		id         UUID PRIMARY KEY,
		kind       TEXT NOT NULL,
		name       TEXT NOT NULL DEFAULT '',
		email      TEXT NOT NULL DEFAULT '',
		mobile     TEXT NOT NULL DEFAULT '',
		payload    JSONB NOT NULL DEFAULT '{}'::jsonb,
		status     TEXT NOT NULL DEFAULT 'received',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_kind_created ON leads (kind, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS subscribers (
		id         UUID PRIMARY KEY,
		email      TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates missing tables and indexes.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
