// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package database

import (
	"context"
	"fmt"

	"github.com/soerfi/qr-wizard/internal/models"
)

// ScansForExport returns the filtered scan events joined with their
// link's identity and facets, newest first. No limit is applied; the
// caller streams the rows out as CSV.
func (db *DB) ScansForExport(ctx context.Context, filter ScanFilter) ([]models.ScanExportRow, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	whereClause, args := scanConditions(filter).Build()

	sqlQuery := fmt.Sprintf(`
	SELECT
		s.id, s.scanned_at,
		q.slug, q.name, q.campaign, q.channel, q.location, q.owner,
		s.country, s.region, s.city, s.os, s.browser, s.device_type,
		s.referrer, s.is_bot, s.is_unique, s.is_duplicate
	FROM scan_events s
	JOIN qr_codes q ON q.id = s.qr_code_id
	WHERE %s
	ORDER BY s.scanned_at DESC, s.id DESC`, whereClause)

	rows, err := db.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans for export: %w", err)
	}
	defer rows.Close()

	var export []models.ScanExportRow
	for rows.Next() {
		var row models.ScanExportRow
		err := rows.Scan(
			&row.ScanID, &row.ScannedAt,
			&row.Slug, &row.Name, &row.Campaign, &row.Channel, &row.Location, &row.Owner,
			&row.Country, &row.Region, &row.City, &row.OS, &row.Browser, &row.DeviceType,
			&row.Referrer, &row.IsBot, &row.IsUnique, &row.IsDuplicate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export row: %w", err)
		}
		export = append(export, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating export rows: %w", err)
	}

	return export, nil
}
