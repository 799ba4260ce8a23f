// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package models

// SummaryStats are the headline KPIs for the filtered scan set.
// TotalScans and UniqueScans exclude bots; ConversionRate is
// conversions over unique scans as a percentage rounded to two
// decimals (0 when there are no unique scans).
type SummaryStats struct {
	TotalScans       int64   `json:"total_scans"`
	UniqueScans      int64   `json:"unique_scans"`
	BotScans         int64   `json:"bot_scans"`
	Conversions      int64   `json:"conversions"`
	ConversionRate   float64 `json:"conversion_rate"`
	GeoAccuracyNote  string  `json:"geo_accuracy_note"`
	UniqueDefinition string  `json:"unique_definition"`
}

// TimeseriesPoint is one bucket of scan counts. Bucket formatting
// depends on granularity: "2026-01-02 15:00" (hour), "2026-01-02"
// (day), "2026-W01" (week), "2026-01" (month).
type TimeseriesPoint struct {
	Bucket      string `json:"bucket"`
	TotalScans  int64  `json:"total_scans"`
	UniqueScans int64  `json:"unique_scans"`
}

// TopLink ranks a link by non-bot scan volume.
type TopLink struct {
	QRCodeID    int64   `json:"qr_code_id"`
	Slug        string  `json:"slug"`
	Name        *string `json:"name"`
	Campaign    *string `json:"campaign"`
	Channel     *string `json:"channel"`
	Location    *string `json:"location"`
	TotalScans  int64   `json:"total_scans"`
	UniqueScans int64   `json:"unique_scans"`
}

// BreakdownRow is one group in a dimensional breakdown. Null dimension
// values are rendered as "(unknown)".
type BreakdownRow struct {
	Label       string `json:"label"`
	TotalScans  int64  `json:"total_scans"`
	UniqueScans int64  `json:"unique_scans"`
}

// FilterOptions lists the distinct facet values present in the link
// library, for populating dashboard filter dropdowns.
type FilterOptions struct {
	Campaigns []string `json:"campaigns"`
	Channels  []string `json:"channels"`
	Locations []string `json:"locations"`
	Owners    []string `json:"owners"`
}

// PurgeResult reports a retention purge run.
type PurgeResult struct {
	RetentionDays      int   `json:"retention_days"`
	DeletedScans       int64 `json:"deleted_scans"`
	DeletedConversions int64 `json:"deleted_conversions"`
}
