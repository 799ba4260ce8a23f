// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package database

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/soerfi/qr-wizard/internal/models"
)

// Granularity selects the bucket size of a timeseries.
type Granularity string

// Supported timeseries granularities.
const (
	GranularityHour  Granularity = "hour"
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// ParseGranularity parses a granularity parameter. Empty defaults to
// day; unknown values report ok=false.
func ParseGranularity(s string) (Granularity, bool) {
	switch Granularity(strings.ToLower(s)) {
	case "":
		return GranularityDay, true
	case GranularityHour:
		return GranularityHour, true
	case GranularityDay:
		return GranularityDay, true
	case GranularityWeek:
		return GranularityWeek, true
	case GranularityMonth:
		return GranularityMonth, true
	}
	return "", false
}

// bucketFormat returns the strftime format for the bucket label.
// Weeks use %W (Monday-start week number), weekday labels elsewhere use
// %w (0 = Sunday), matching the bucket labels of the export tooling.
func (g Granularity) bucketFormat() string {
	switch g {
	case GranularityHour:
		return "%Y-%m-%d %H:00"
	case GranularityWeek:
		return "%Y-W%W"
	case GranularityMonth:
		return "%Y-%m"
	default:
		return "%Y-%m-%d"
	}
}

// Dimension selects the grouping axis of a breakdown.
type Dimension string

// Supported breakdown dimensions.
const (
	DimensionCampaign  Dimension = "campaign"
	DimensionChannel   Dimension = "channel"
	DimensionLocation  Dimension = "location"
	DimensionCountry   Dimension = "country"
	DimensionRegion    Dimension = "region"
	DimensionCity      Dimension = "city"
	DimensionDevice    Dimension = "device"
	DimensionBrowser   Dimension = "browser"
	DimensionOS        Dimension = "os"
	DimensionReferrer  Dimension = "referrer"
	DimensionHourOfDay Dimension = "hour_of_day"
	DimensionDayOfWeek Dimension = "day_of_week"
)

// ParseDimension parses a breakdown field parameter. Unknown values
// fall back to campaign rather than failing.
func ParseDimension(s string) Dimension {
	d := Dimension(strings.ToLower(s))
	switch d {
	case DimensionCampaign, DimensionChannel, DimensionLocation,
		DimensionCountry, DimensionRegion, DimensionCity,
		DimensionDevice, DimensionBrowser, DimensionOS, DimensionReferrer,
		DimensionHourOfDay, DimensionDayOfWeek:
		return d
	}
	return DimensionCampaign
}

// expr returns the SQL grouping expression for the dimension, over
// scan_events s joined with qr_codes q.
func (d Dimension) expr() string {
	switch d {
	case DimensionChannel:
		return "q.channel"
	case DimensionLocation:
		return "q.location"
	case DimensionCountry:
		return "s.country"
	case DimensionRegion:
		return "s.region"
	case DimensionCity:
		return "s.city"
	case DimensionDevice:
		return "s.device_type"
	case DimensionBrowser:
		return "s.browser"
	case DimensionOS:
		return "s.os"
	case DimensionReferrer:
		return "s.referrer"
	case DimensionHourOfDay:
		return "strftime(s.scanned_at, '%H')"
	case DimensionDayOfWeek:
		return "strftime(s.scanned_at, '%w')"
	default:
		return "q.campaign"
	}
}

var dayNames = map[string]string{
	"0": "Sunday",
	"1": "Monday",
	"2": "Tuesday",
	"3": "Wednesday",
	"4": "Thursday",
	"5": "Friday",
	"6": "Saturday",
}

// Summary returns the headline counters for the filtered window. Bots
// are excluded from total and unique counts and reported separately.
// The note fields are left empty for the caller to fill.
func (db *DB) Summary(ctx context.Context, filter ScanFilter) (*models.SummaryStats, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	whereClause, args := scanConditions(filter).Build()

	sqlQuery := fmt.Sprintf(`
	SELECT
		COALESCE(SUM(CASE WHEN NOT s.is_bot THEN 1 ELSE 0 END), 0) AS total_scans,
		COALESCE(SUM(CASE WHEN NOT s.is_bot AND s.is_unique THEN 1 ELSE 0 END), 0) AS unique_scans,
		COALESCE(SUM(CASE WHEN s.is_bot THEN 1 ELSE 0 END), 0) AS bot_scans
	FROM scan_events s
	JOIN qr_codes q ON q.id = s.qr_code_id
	WHERE %s`, whereClause)

	var stats models.SummaryStats
	err := db.conn.QueryRowContext(ctx, sqlQuery, args...).Scan(
		&stats.TotalScans, &stats.UniqueScans, &stats.BotScans,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan summary: %w", err)
	}

	convWhere, convArgs := conversionConditions(filter).Build()
	convQuery := fmt.Sprintf(`
	SELECT COUNT(*)
	FROM conversion_events c
	JOIN qr_codes q ON q.id = c.qr_code_id
	WHERE %s`, convWhere)

	if err := db.conn.QueryRowContext(ctx, convQuery, convArgs...).Scan(&stats.Conversions); err != nil {
		return nil, fmt.Errorf("failed to query conversion summary: %w", err)
	}

	if stats.UniqueScans > 0 {
		rate := float64(stats.Conversions) / float64(stats.UniqueScans) * 100
		stats.ConversionRate = math.Round(rate*100) / 100
	}

	return &stats, nil
}

// Timeseries returns non-bot scan counts bucketed by the given
// granularity, in ascending bucket order.
func (db *DB) Timeseries(ctx context.Context, filter ScanFilter, granularity Granularity) ([]models.TimeseriesPoint, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	wb := scanConditions(filter)
	wb.AddBool("s.is_bot", false)
	whereClause, args := wb.Build()

	sqlQuery := fmt.Sprintf(`
	SELECT
		strftime(s.scanned_at, '%s') AS bucket,
		COUNT(*) AS total_scans,
		SUM(CASE WHEN s.is_unique THEN 1 ELSE 0 END) AS unique_scans
	FROM scan_events s
	JOIN qr_codes q ON q.id = s.qr_code_id
	WHERE %s
	GROUP BY bucket
	ORDER BY bucket ASC`, granularity.bucketFormat(), whereClause)

	rows, err := db.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query timeseries: %w", err)
	}
	defer rows.Close()

	points := []models.TimeseriesPoint{}
	for rows.Next() {
		var p models.TimeseriesPoint
		if err := rows.Scan(&p.Bucket, &p.TotalScans, &p.UniqueScans); err != nil {
			return nil, fmt.Errorf("failed to scan timeseries point: %w", err)
		}
		points = append(points, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating timeseries: %w", err)
	}

	return points, nil
}

// TopLinks returns the most scanned links in the filtered window,
// excluding bot traffic.
func (db *DB) TopLinks(ctx context.Context, filter ScanFilter, limit int) ([]models.TopLink, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 10
	}

	wb := scanConditions(filter)
	wb.AddBool("s.is_bot", false)
	whereClause, args := wb.Build()
	args = append(args, limit)

	sqlQuery := fmt.Sprintf(`
	SELECT
		q.id, q.slug, q.name, q.campaign, q.channel, q.location,
		COUNT(*) AS total_scans,
		SUM(CASE WHEN s.is_unique THEN 1 ELSE 0 END) AS unique_scans
	FROM scan_events s
	JOIN qr_codes q ON q.id = s.qr_code_id
	WHERE %s
	GROUP BY q.id, q.slug, q.name, q.campaign, q.channel, q.location
	ORDER BY total_scans DESC, q.id ASC
	LIMIT ?`, whereClause)

	rows, err := db.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query top links: %w", err)
	}
	defer rows.Close()

	top := []models.TopLink{}
	for rows.Next() {
		var t models.TopLink
		err := rows.Scan(&t.QRCodeID, &t.Slug, &t.Name, &t.Campaign, &t.Channel, &t.Location,
			&t.TotalScans, &t.UniqueScans)
		if err != nil {
			return nil, fmt.Errorf("failed to scan top link: %w", err)
		}
		top = append(top, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top links: %w", err)
	}

	return top, nil
}

// Breakdown groups non-bot scans in the filtered window along one
// dimension, most scanned first. Null and empty labels collapse to
// "(unknown)", weekdays and hours get human labels.
func (db *DB) Breakdown(ctx context.Context, filter ScanFilter, dimension Dimension, limit int) ([]models.BreakdownRow, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 20
	}

	wb := scanConditions(filter)
	wb.AddBool("s.is_bot", false)
	whereClause, args := wb.Build()
	args = append(args, limit)

	sqlQuery := fmt.Sprintf(`
	SELECT
		%s AS label,
		COUNT(*) AS total_scans,
		SUM(CASE WHEN s.is_unique THEN 1 ELSE 0 END) AS unique_scans
	FROM scan_events s
	JOIN qr_codes q ON q.id = s.qr_code_id
	WHERE %s
	GROUP BY label
	ORDER BY total_scans DESC, label ASC
	LIMIT ?`, dimension.expr(), whereClause)

	rows, err := db.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query breakdown: %w", err)
	}
	defer rows.Close()

	breakdown := []models.BreakdownRow{}
	for rows.Next() {
		var label *string
		var row models.BreakdownRow
		if err := rows.Scan(&label, &row.TotalScans, &row.UniqueScans); err != nil {
			return nil, fmt.Errorf("failed to scan breakdown row: %w", err)
		}
		row.Label = breakdownLabel(dimension, label)
		breakdown = append(breakdown, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating breakdown: %w", err)
	}

	return breakdown, nil
}

// breakdownLabel renders the display label of a breakdown group.
func breakdownLabel(dimension Dimension, label *string) string {
	if label == nil || *label == "" {
		return "(unknown)"
	}

	switch dimension {
	case DimensionDayOfWeek:
		if name, ok := dayNames[*label]; ok {
			return name
		}
	case DimensionHourOfDay:
		return *label + ":00"
	}
	return *label
}
