// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

/*
schema.go - Database Schema Management

This file manages the DuckDB schema: table creation, additive
migrations and index management.

Tables:
  - qr_codes: one row per trackable link (slug, destination, facets,
    UTM template, status, lifecycle timestamps)
  - scan_events: one row per redirect hit with device, geo and
    uniqueness classification
  - goals: conversion goals, either global or scoped to one link
  - conversion_events: recorded conversions, optionally tied to a goal
    and an originating scan
  - qr_history: append-only change log per link

Schema Strategy:
Columns are defined in the initial CREATE TABLE statements; later
additions go through runMigrations as ADD COLUMN IF NOT EXISTS so
databases created by earlier releases upgrade in place on startup.

Index Strategy:
Indexes cover the hot paths: per-link scan listing, the uniqueness
window probe (fingerprint + scanned_at), and the analytics filters
(is_bot, scanned_at, occurred_at). Slug lookup is served by the UNIQUE
constraint on qr_codes.slug.
*/

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := db.getTableCreationQueries()

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// getTableCreationQueries returns the table creation SQL statements
func (db *DB) getTableCreationQueries() []string {
	return []string{
		// DuckDB has no AUTOINCREMENT; sequences provide the row ids.
		`CREATE SEQUENCE IF NOT EXISTS qr_codes_id_seq;`,
		`CREATE SEQUENCE IF NOT EXISTS scan_events_id_seq;`,
		`CREATE SEQUENCE IF NOT EXISTS goals_id_seq;`,
		`CREATE SEQUENCE IF NOT EXISTS conversion_events_id_seq;`,
		`CREATE SEQUENCE IF NOT EXISTS qr_history_id_seq;`,

		// Trackable links. Timestamps are naive UTC; the application
		// passes them explicitly rather than relying on column defaults.
		`CREATE TABLE IF NOT EXISTS qr_codes (
			id BIGINT PRIMARY KEY DEFAULT nextval('qr_codes_id_seq'),
			slug TEXT NOT NULL UNIQUE,
			name TEXT,
			destination_url TEXT NOT NULL,
			campaign TEXT,
			channel TEXT,
			location TEXT,
			asset TEXT,
			owner TEXT,
			notes TEXT,
			status TEXT NOT NULL DEFAULT 'active',
			dynamic BOOLEAN NOT NULL DEFAULT true,
			auto_append_utm BOOLEAN NOT NULL DEFAULT false,
			utm_source TEXT,
			utm_medium TEXT,
			utm_campaign TEXT,
			utm_term TEXT,
			utm_content TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,

		// One row per redirect hit. ip_hash and visitor_fingerprint are
		// salted digests; raw addresses are never stored.
		`CREATE TABLE IF NOT EXISTS scan_events (
			id BIGINT PRIMARY KEY DEFAULT nextval('scan_events_id_seq'),
			qr_code_id BIGINT NOT NULL,
			scanned_at TIMESTAMP NOT NULL,
			ip_hash TEXT,
			visitor_fingerprint TEXT,
			country TEXT,
			region TEXT,
			city TEXT,
			os TEXT,
			browser TEXT,
			device_type TEXT NOT NULL DEFAULT 'unknown',
			referrer TEXT,
			user_agent TEXT,
			is_bot BOOLEAN NOT NULL DEFAULT false,
			is_unique BOOLEAN NOT NULL DEFAULT false,
			is_duplicate BOOLEAN NOT NULL DEFAULT false,
			query_payload TEXT
		);`,

		// Conversion goals. qr_code_id NULL means the goal is global.
		`CREATE TABLE IF NOT EXISTS goals (
			id BIGINT PRIMARY KEY DEFAULT nextval('goals_id_seq'),
			qr_code_id BIGINT,
			name TEXT NOT NULL,
			target_url TEXT,
			description TEXT,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS conversion_events (
			id BIGINT PRIMARY KEY DEFAULT nextval('conversion_events_id_seq'),
			qr_code_id BIGINT NOT NULL,
			goal_id BIGINT,
			scan_event_id BIGINT,
			event_name TEXT,
			value DOUBLE,
			visitor_fingerprint TEXT,
			occurred_at TIMESTAMP NOT NULL
		);`,

		// Append-only change log per link.
		`CREATE TABLE IF NOT EXISTS qr_history (
			id BIGINT PRIMARY KEY DEFAULT nextval('qr_history_id_seq'),
			qr_code_id BIGINT NOT NULL,
			action TEXT NOT NULL,
			details TEXT,
			created_at TIMESTAMP NOT NULL
		);`,
	}
}

// runMigrations applies additive schema changes for databases created
// by earlier releases. All statements must be idempotent.
func (db *DB) runMigrations() error {
	ctx, cancel := schemaContext()
	defer cancel()

	migrations := []string{
		// expires_at postdates the first release.
		`ALTER TABLE qr_codes ADD COLUMN IF NOT EXISTS expires_at TIMESTAMP;`,
	}

	for _, query := range migrations {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute migration: %s: %w", query, err)
		}
	}

	return nil
}

// createIndexes creates all database indexes
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := db.getIndexQueries()

	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute index query: %s: %w", query, err)
		}
	}

	return nil
}

// getIndexQueries returns index creation SQL statements
func (db *DB) getIndexQueries() []string {
	return []string{
		// Library filtering
		`CREATE INDEX IF NOT EXISTS idx_qr_codes_status ON qr_codes(status);`,

		// Scan analytics
		`CREATE INDEX IF NOT EXISTS idx_scan_events_qr_code_id ON scan_events(qr_code_id);`,
		`CREATE INDEX IF NOT EXISTS idx_scan_events_scanned_at ON scan_events(scanned_at);`,
		`CREATE INDEX IF NOT EXISTS idx_scan_events_is_bot ON scan_events(is_bot);`,
		`CREATE INDEX IF NOT EXISTS idx_scan_events_is_unique ON scan_events(is_unique);`,
		`CREATE INDEX IF NOT EXISTS idx_scan_events_is_duplicate ON scan_events(is_duplicate);`,

		// Uniqueness window probe
		`CREATE INDEX IF NOT EXISTS idx_scan_events_fingerprint ON scan_events(visitor_fingerprint, scanned_at);`,

		// Conversions and goals
		`CREATE INDEX IF NOT EXISTS idx_conversion_events_qr_code_id ON conversion_events(qr_code_id);`,
		`CREATE INDEX IF NOT EXISTS idx_conversion_events_occurred_at ON conversion_events(occurred_at);`,
		`CREATE INDEX IF NOT EXISTS idx_goals_qr_code_id ON goals(qr_code_id);`,

		// History
		`CREATE INDEX IF NOT EXISTS idx_qr_history_qr_code_id ON qr_history(qr_code_id);`,
	}
}
