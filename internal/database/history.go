// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/soerfi/qr-wizard/internal/models"
)

// InsertHistory appends one change-log entry for a link.
func (db *DB) InsertHistory(ctx context.Context, qrCodeID int64, action string, details *string, createdAt time.Time) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO qr_history (qr_code_id, action, details, created_at) VALUES (?, ?, ?, ?)`,
		qrCodeID, action, details, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

// ListHistory returns the newest change-log entries for a link.
func (db *DB) ListHistory(ctx context.Context, qrCodeID int64, limit int) ([]*models.HistoryEntry, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 200
	}

	query := `
	SELECT id, qr_code_id, action, details, created_at
	FROM qr_history
	WHERE qr_code_id = ?
	ORDER BY created_at DESC, id DESC
	LIMIT ?`

	rows, err := db.conn.QueryContext(ctx, query, qrCodeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := []*models.HistoryEntry{}
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.ID, &e.QRCodeID, &e.Action, &e.Details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return entries, nil
}
