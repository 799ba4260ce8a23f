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
	"strings"
	"time"

	"github.com/soerfi/qr-wizard/internal/models"
)

// CreateGoal inserts a new conversion goal and sets its assigned id.
func (db *DB) CreateGoal(ctx context.Context, g *models.Goal) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `
	INSERT INTO goals (qr_code_id, name, target_url, description, active, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	RETURNING id`

	err := db.conn.QueryRowContext(ctx, query,
		g.QRCodeID, g.Name, g.TargetURL, g.Description, g.Active, g.CreatedAt,
	).Scan(&g.ID)
	if err != nil {
		return fmt.Errorf("failed to insert goal: %w", err)
	}

	return nil
}

// GetGoal returns one goal by id, or ErrNotFound.
func (db *DB) GetGoal(ctx context.Context, id int64) (*models.Goal, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `
	SELECT id, qr_code_id, name, target_url, description, active, created_at
	FROM goals
	WHERE id = ?`

	var g models.Goal
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.QRCodeID, &g.Name, &g.TargetURL, &g.Description, &g.Active, &g.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal %d: %w", id, err)
	}

	return &g, nil
}

// ListGoals returns goals newest first, optionally restricted to one
// link.
func (db *DB) ListGoals(ctx context.Context, qrCodeID *int64) ([]*models.Goal, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `
	SELECT id, qr_code_id, name, target_url, description, active, created_at
	FROM goals`
	var args []interface{}
	if qrCodeID != nil {
		query += `
	WHERE qr_code_id = ?`
		args = append(args, *qrCodeID)
	}
	query += `
	ORDER BY created_at DESC, id DESC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	var goals []*models.Goal
	for rows.Next() {
		var g models.Goal
		err := rows.Scan(&g.ID, &g.QRCodeID, &g.Name, &g.TargetURL, &g.Description, &g.Active, &g.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, &g)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals: %w", err)
	}

	return goals, nil
}

// UpsertPrimaryGoal creates or refreshes the primary goal of a link.
// The primary goal is the link's lowest-id goal; refreshing it also
// reactivates it.
func (db *DB) UpsertPrimaryGoal(ctx context.Context, qrCodeID int64, name string, targetURL *string, createdAt time.Time) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	result, err := db.conn.ExecContext(ctx, `
	UPDATE goals SET name = ?, target_url = ?, active = true
	WHERE id = (SELECT id FROM goals WHERE qr_code_id = ? ORDER BY id LIMIT 1)`,
		name, targetURL, qrCodeID,
	)
	if err != nil {
		return fmt.Errorf("failed to update primary goal of link %d: %w", qrCodeID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	goal := &models.Goal{
		QRCodeID:  &qrCodeID,
		Name:      name,
		TargetURL: targetURL,
		Active:    true,
		CreatedAt: createdAt,
	}
	return db.CreateGoal(ctx, goal)
}

// DeletePrimaryGoal removes the primary goal of a link. Returns whether
// a goal existed to delete.
func (db *DB) DeletePrimaryGoal(ctx context.Context, qrCodeID int64) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	result, err := db.conn.ExecContext(ctx, `
	DELETE FROM goals
	WHERE id = (SELECT id FROM goals WHERE qr_code_id = ? ORDER BY id LIMIT 1)`,
		qrCodeID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete primary goal of link %d: %w", qrCodeID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// MatchGoal finds the first active goal whose target URL is a prefix of
// currentURL. Candidates are global goals and goals scoped to the given
// link, in id order for deterministic matching. Returns nil when
// nothing matches.
func (db *DB) MatchGoal(ctx context.Context, qrCodeID int64, currentURL string) (*models.Goal, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `
	SELECT id, qr_code_id, name, target_url, description, active, created_at
	FROM goals
	WHERE active AND (qr_code_id IS NULL OR qr_code_id = ?)
	ORDER BY id`

	rows, err := db.conn.QueryContext(ctx, query, qrCodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goal candidates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var g models.Goal
		err := rows.Scan(&g.ID, &g.QRCodeID, &g.Name, &g.TargetURL, &g.Description, &g.Active, &g.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal candidate: %w", err)
		}
		if g.TargetURL != nil && *g.TargetURL != "" && strings.HasPrefix(currentURL, *g.TargetURL) {
			return &g, nil
		}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goal candidates: %w", err)
	}

	return nil, nil
}

// InsertConversion persists one conversion event and sets its assigned
// id.
func (db *DB) InsertConversion(ctx context.Context, c *models.ConversionEvent) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `
	INSERT INTO conversion_events (
		qr_code_id, goal_id, scan_event_id, event_name, value, visitor_fingerprint, occurred_at
	) VALUES (?, ?, ?, ?, ?, ?, ?)
	RETURNING id`

	err := db.conn.QueryRowContext(ctx, query,
		c.QRCodeID, c.GoalID, c.ScanEventID, c.EventName, c.Value, c.VisitorFingerprint, c.OccurredAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("failed to insert conversion event: %w", err)
	}

	return nil
}
