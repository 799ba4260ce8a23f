// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/soerfi/qr-wizard/internal/models"
)

// InsertScan persists one scan event and sets its assigned id.
func (db *DB) InsertScan(ctx context.Context, e *models.ScanEvent) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `
	INSERT INTO scan_events (
		qr_code_id, scanned_at, ip_hash, visitor_fingerprint,
		country, region, city, os, browser, device_type,
		referrer, user_agent, is_bot, is_unique, is_duplicate, query_payload
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	RETURNING id`

	err := db.conn.QueryRowContext(ctx, query,
		e.QRCodeID, e.ScannedAt, e.IPHash, e.VisitorFingerprint,
		e.Country, e.Region, e.City, e.OS, e.Browser, e.DeviceType,
		e.Referrer, e.UserAgent, e.IsBot, e.IsUnique, e.IsDuplicate, e.QueryPayload,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("failed to insert scan event: %w", err)
	}

	return nil
}

// GetScan returns one scan event by id, or ErrNotFound.
func (db *DB) GetScan(ctx context.Context, id int64) (*models.ScanEvent, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `
	SELECT id, qr_code_id, scanned_at, ip_hash, visitor_fingerprint,
		country, region, city, os, browser, device_type,
		referrer, user_agent, is_bot, is_unique, is_duplicate, query_payload
	FROM scan_events
	WHERE id = ?`

	var e models.ScanEvent
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.QRCodeID, &e.ScannedAt, &e.IPHash, &e.VisitorFingerprint,
		&e.Country, &e.Region, &e.City, &e.OS, &e.Browser, &e.DeviceType,
		&e.Referrer, &e.UserAgent, &e.IsBot, &e.IsUnique, &e.IsDuplicate, &e.QueryPayload,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan event %d: %w", id, err)
	}

	return &e, nil
}

// HasRecentScan reports whether the fingerprint produced a non-bot scan
// of the given link at or after since. The uniqueness window probe on
// the redirect path; uniqueness is per link, so the same visitor is
// unique again on a different link.
func (db *DB) HasRecentScan(ctx context.Context, qrCodeID int64, fingerprint string, since time.Time) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `
	SELECT EXISTS(
		SELECT 1 FROM scan_events
		WHERE qr_code_id = ? AND visitor_fingerprint = ? AND is_bot = false AND scanned_at >= ?
	)`

	var exists bool
	err := db.conn.QueryRowContext(ctx, query, qrCodeID, fingerprint, since).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to probe uniqueness window: %w", err)
	}
	return exists, nil
}

// PurgeOldData deletes scan and conversion events older than cutoff in
// one transaction and returns the per-table delete counts.
func (db *DB) PurgeOldData(ctx context.Context, cutoff time.Time) (deletedScans, deletedConversions int64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin purge transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `DELETE FROM scan_events WHERE scanned_at < ?`, cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to purge scan events: %w", err)
	}
	if deletedScans, err = result.RowsAffected(); err != nil {
		return 0, 0, fmt.Errorf("failed to read rows affected: %w", err)
	}

	result, err = tx.ExecContext(ctx, `DELETE FROM conversion_events WHERE occurred_at < ?`, cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to purge conversion events: %w", err)
	}
	if deletedConversions, err = result.RowsAffected(); err != nil {
		return 0, 0, fmt.Errorf("failed to read rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit purge transaction: %w", err)
	}

	return deletedScans, deletedConversions, nil
}

// RecordCounts returns the number of links and scan events. Used for
// the startup log line.
func (db *DB) RecordCounts(ctx context.Context) (links, scans int64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM qr_codes`).Scan(&links); err != nil {
		return 0, 0, fmt.Errorf("failed to count links: %w", err)
	}
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM scan_events`).Scan(&scans); err != nil {
		return 0, 0, fmt.Errorf("failed to count scan events: %w", err)
	}
	return links, scans, nil
}
