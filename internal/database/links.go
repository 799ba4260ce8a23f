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

	"github.com/soerfi/qr-wizard/internal/database/query"
	"github.com/soerfi/qr-wizard/internal/models"
)

// linkColumns is the shared SELECT list for link queries. total_scans
// and the primary goal are correlated subqueries; DuckDB decorrelates
// them into joins, so they stay cheap even on library listings.
const linkColumns = `
	q.id, q.slug, q.name, q.destination_url,
	q.campaign, q.channel, q.location, q.asset, q.owner, q.notes,
	q.status, q.dynamic, q.auto_append_utm,
	q.utm_source, q.utm_medium, q.utm_campaign, q.utm_term, q.utm_content,
	q.created_at, q.updated_at, q.expires_at,
	(SELECT COUNT(*) FROM scan_events s WHERE s.qr_code_id = q.id) AS total_scans,
	(SELECT g.name FROM goals g WHERE g.qr_code_id = q.id AND g.active ORDER BY g.id LIMIT 1) AS goal_name,
	(SELECT g.target_url FROM goals g WHERE g.qr_code_id = q.id AND g.active ORDER BY g.id LIMIT 1) AS goal_target`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanLink scans one row produced with linkColumns.
func scanLink(row rowScanner) (*models.Link, error) {
	var l models.Link
	err := row.Scan(
		&l.ID, &l.Slug, &l.Name, &l.DestinationURL,
		&l.Campaign, &l.Channel, &l.Location, &l.Asset, &l.Owner, &l.Notes,
		&l.Status, &l.Dynamic, &l.AutoAppendUTM,
		&l.UTMSource, &l.UTMMedium, &l.UTMCampaign, &l.UTMTerm, &l.UTMContent,
		&l.CreatedAt, &l.UpdatedAt, &l.ExpiresAt,
		&l.TotalScans, &l.GoalName, &l.GoalTarget,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateLink inserts a new link and sets its assigned id.
// Slug, status and timestamps must already be populated by the caller.
func (db *DB) CreateLink(ctx context.Context, l *models.Link) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	sqlQuery := `
	INSERT INTO qr_codes (
		slug, name, destination_url,
		campaign, channel, location, asset, owner, notes,
		status, dynamic, auto_append_utm,
		utm_source, utm_medium, utm_campaign, utm_term, utm_content,
		created_at, updated_at, expires_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	RETURNING id`

	err := db.conn.QueryRowContext(ctx, sqlQuery,
		l.Slug, l.Name, l.DestinationURL,
		l.Campaign, l.Channel, l.Location, l.Asset, l.Owner, l.Notes,
		l.Status, l.Dynamic, l.AutoAppendUTM,
		l.UTMSource, l.UTMMedium, l.UTMCampaign, l.UTMTerm, l.UTMContent,
		l.CreatedAt, l.UpdatedAt, l.ExpiresAt,
	).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("failed to insert link: %w", err)
	}

	return nil
}

// GetLink returns one link by id, or ErrNotFound.
func (db *DB) GetLink(ctx context.Context, id int64) (*models.Link, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	sqlQuery := `SELECT` + linkColumns + `
	FROM qr_codes q
	WHERE q.id = ?`

	l, err := scanLink(db.conn.QueryRowContext(ctx, sqlQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get link %d: %w", id, err)
	}
	return l, nil
}

// GetLinkBySlug returns one link by slug, or ErrNotFound.
func (db *DB) GetLinkBySlug(ctx context.Context, slug string) (*models.Link, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	sqlQuery := `SELECT` + linkColumns + `
	FROM qr_codes q
	WHERE q.slug = ?`

	l, err := scanLink(db.conn.QueryRowContext(ctx, sqlQuery, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get link by slug %q: %w", slug, err)
	}
	return l, nil
}

// SlugExists reports whether a slug is already taken.
func (db *DB) SlugExists(ctx context.Context, slug string) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM qr_codes WHERE slug = ?)`, slug,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug %q: %w", slug, err)
	}
	return exists, nil
}

// UpdateLink persists all mutable fields of a link. Slug, dynamic and
// created_at are immutable after creation.
func (db *DB) UpdateLink(ctx context.Context, l *models.Link) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	sqlQuery := `
	UPDATE qr_codes SET
		name = ?, destination_url = ?,
		campaign = ?, channel = ?, location = ?, asset = ?, owner = ?, notes = ?,
		status = ?, auto_append_utm = ?,
		utm_source = ?, utm_medium = ?, utm_campaign = ?, utm_term = ?, utm_content = ?,
		updated_at = ?, expires_at = ?
	WHERE id = ?`

	result, err := db.conn.ExecContext(ctx, sqlQuery,
		l.Name, l.DestinationURL,
		l.Campaign, l.Channel, l.Location, l.Asset, l.Owner, l.Notes,
		l.Status, l.AutoAppendUTM,
		l.UTMSource, l.UTMMedium, l.UTMCampaign, l.UTMTerm, l.UTMContent,
		l.UpdatedAt, l.ExpiresAt,
		l.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update link %d: %w", l.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetLinkStatus updates only the status column. Used by the redirect
// path to archive expired links.
func (db *DB) SetLinkStatus(ctx context.Context, id int64, status string, updatedAt time.Time) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE qr_codes SET status = ?, updated_at = ? WHERE id = ?`,
		status, updatedAt, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set status of link %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteLink removes a link and all dependent rows.
func (db *DB) DeleteLink(ctx context.Context, id int64) error {
	count, err := db.DeleteLinks(ctx, []int64{id})
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteLinks removes the given links and all dependent scan events,
// conversions, history entries and goals in one transaction. Returns
// the number of links actually deleted.
func (db *DB) DeleteLinks(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	in := inPlaceholders(len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	dependents := []string{
		`DELETE FROM scan_events WHERE qr_code_id IN ` + in,
		`DELETE FROM conversion_events WHERE qr_code_id IN ` + in,
		`DELETE FROM qr_history WHERE qr_code_id IN ` + in,
		`DELETE FROM goals WHERE qr_code_id IN ` + in,
	}
	for _, sqlQuery := range dependents {
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return 0, fmt.Errorf("failed to delete dependent rows: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM qr_codes WHERE id IN `+in, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete links: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit delete transaction: %w", err)
	}
	return count, nil
}

// ListLinksByIDs returns the links with the given ids, newest first.
// Unknown ids are skipped.
func (db *DB) ListLinksByIDs(ctx context.Context, ids []int64) ([]*models.Link, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	sqlQuery := `SELECT` + linkColumns + `
	FROM qr_codes q
	WHERE q.id IN ` + inPlaceholders(len(ids)) + `
	ORDER BY q.created_at DESC, q.id DESC`

	return db.queryLinks(ctx, sqlQuery, args...)
}

// ListLinks returns one page of the library, filtered and ordered
// newest first.
func (db *DB) ListLinks(ctx context.Context, filter models.LinkFilter) (*models.LinkList, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 50
	}

	wb := query.NewWhereBuilder()
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		wb.AddClause(
			`(q.name ILIKE ? OR q.slug ILIKE ? OR q.destination_url ILIKE ?
			OR q.campaign ILIKE ? OR q.channel ILIKE ? OR q.location ILIKE ?
			OR q.asset ILIKE ? OR q.owner ILIKE ?)`,
			like, like, like, like, like, like, like, like,
		)
	}
	wb.AddFacet("q.campaign", filter.Campaign)
	wb.AddFacet("q.channel", filter.Channel)
	wb.AddFacet("q.location", filter.Location)
	wb.AddFacet("q.owner", filter.Owner)
	wb.AddFacet("q.status", filter.Status)

	whereClause, args := wb.Build()

	var total int64
	countQuery := `SELECT COUNT(*) FROM qr_codes q WHERE ` + whereClause
	if err := db.conn.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count links: %w", err)
	}

	sqlQuery := `SELECT` + linkColumns + `
	FROM qr_codes q
	WHERE ` + whereClause + `
	ORDER BY q.created_at DESC, q.id DESC
	LIMIT ? OFFSET ?`
	pageArgs := append(append([]interface{}{}, args...), perPage, (page-1)*perPage)

	items, err := db.queryLinks(ctx, sqlQuery, pageArgs...)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Link{}
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))

	return &models.LinkList{
		Items: items,
		Pagination: models.Pagination{
			Page:       page,
			PerPage:    perPage,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// LinksForExport returns the whole library, newest first.
func (db *DB) LinksForExport(ctx context.Context) ([]*models.Link, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	sqlQuery := `SELECT` + linkColumns + `
	FROM qr_codes q
	ORDER BY q.created_at DESC, q.id DESC`

	return db.queryLinks(ctx, sqlQuery)
}

// queryLinks runs a linkColumns query and scans all rows.
func (db *DB) queryLinks(ctx context.Context, sqlQuery string, args ...interface{}) ([]*models.Link, error) {
	rows, err := db.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	var links []*models.Link
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, l)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}

// bulkUpdateColumns is the whitelist of columns a bulk update may
// touch, in the order they appear in the generated SET clause.
var bulkUpdateColumns = []string{
	"campaign", "channel", "location", "owner",
	"status", "auto_append_utm", "expires_at",
}

// BulkUpdateLinks applies the given column values to all listed links.
// Columns outside the whitelist are ignored. Returns the number of
// links updated.
func (db *DB) BulkUpdateLinks(ctx context.Context, ids []int64, set map[string]interface{}, updatedAt time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var assignments []string
	var args []interface{}
	for _, col := range bulkUpdateColumns {
		if value, ok := set[col]; ok {
			assignments = append(assignments, col+" = ?")
			args = append(args, value)
		}
	}
	if len(assignments) == 0 {
		return 0, nil
	}
	assignments = append(assignments, "updated_at = ?")
	args = append(args, updatedAt)

	for _, id := range ids {
		args = append(args, id)
	}

	sqlQuery := `UPDATE qr_codes SET ` + strings.Join(assignments, ", ") +
		` WHERE id IN ` + inPlaceholders(len(ids))

	result, err := db.conn.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update links: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return count, nil
}

// LibraryStats returns per-status link counts.
func (db *DB) LibraryStats(ctx context.Context) (*models.LibraryStats, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	sqlQuery := `
	SELECT
		COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0) AS active,
		COALESCE(SUM(CASE WHEN status = 'paused' THEN 1 ELSE 0 END), 0) AS paused,
		COALESCE(SUM(CASE WHEN status = 'archived' THEN 1 ELSE 0 END), 0) AS archived,
		COUNT(*) AS total
	FROM qr_codes`

	var stats models.LibraryStats
	err := db.conn.QueryRowContext(ctx, sqlQuery).Scan(
		&stats.Active, &stats.Paused, &stats.Archived, &stats.Total,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query library stats: %w", err)
	}

	return &stats, nil
}

// FilterOptions returns the distinct facet values present in the
// library, for populating filter dropdowns.
func (db *DB) FilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	options := &models.FilterOptions{}
	targets := []struct {
		column string
		dest   *[]string
	}{
		{"campaign", &options.Campaigns},
		{"channel", &options.Channels},
		{"location", &options.Locations},
		{"owner", &options.Owners},
	}

	for _, t := range targets {
		values, err := db.distinctFacetValues(ctx, t.column)
		if err != nil {
			return nil, err
		}
		*t.dest = values
	}

	return options, nil
}

// distinctFacetValues returns sorted distinct non-null values of one
// facet column. The column name comes from a fixed internal list,
// never from user input.
func (db *DB) distinctFacetValues(ctx context.Context, column string) ([]string, error) {
	sqlQuery := fmt.Sprintf(
		`SELECT DISTINCT %s FROM qr_codes WHERE %s IS NOT NULL ORDER BY %s`,
		column, column, column,
	)

	rows, err := db.conn.QueryContext(ctx, sqlQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s options: %w", column, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan %s option: %w", column, err)
		}
		values = append(values, v)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s options: %w", column, err)
	}

	return values, nil
}

// inPlaceholders returns "(?, ?, ...)" with n placeholders.
func inPlaceholders(n int) string {
	if n <= 0 {
		return "()"
	}
	return "(" + strings.Repeat("?, ", n-1) + "?)"
}
