// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/soerfi/qr-wizard/internal/database"
	"github.com/soerfi/qr-wizard/internal/models"
)

// Dashboard annotations returned with every summary. The geo note
// tempers expectations; the unique definition is rendered with the
// configured window.
const (
	geoAccuracyNote  = "Geo is IP-based and approximate; city-level resolution may be imprecise or unavailable."
	uniqueDefinition = "Unique = first non-bot scan per visitor fingerprint within %dh."
)

// scanFilterFromRequest builds the shared analytics filter from query
// parameters. Unparseable timestamps are dropped rather than rejected
// so one malformed date never blanks a dashboard.
func scanFilterFromRequest(r *http.Request) database.ScanFilter {
	q := r.URL.Query()
	filter := database.ScanFilter{
		Campaign: q.Get("campaign"),
		Channel:  q.Get("channel"),
		Location: q.Get("location"),
		Owner:    q.Get("owner"),
		Status:   q.Get("status"),
	}
	if raw := q.Get("start"); raw != "" {
		if ts, err := parseTimestamp(raw); err == nil {
			filter.Start = &ts
		}
	}
	if raw := q.Get("end"); raw != "" {
		if ts, err := parseTimestamp(raw); err == nil {
			filter.End = &ts
		}
	}
	if raw := q.Get("qr_code_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			filter.QRCodeID = &id
		}
	}
	return filter
}

// AnalyticsSummary handles GET /api/analytics/summary.
func (h *Handler) AnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	stats, err := h.db.Summary(r.Context(), scanFilterFromRequest(r))
	if err != nil {
		respondDatabaseError(w, r, "analytics_summary", err)
		return
	}
	stats.GeoAccuracyNote = geoAccuracyNote
	stats.UniqueDefinition = fmt.Sprintf(uniqueDefinition, h.config.Tracking.UniqueWindowHours)

	respondJSONTimed(w, http.StatusOK, stats, started)
}

// AnalyticsTimeseries handles GET /api/analytics/timeseries.
func (h *Handler) AnalyticsTimeseries(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	granularity, ok := database.ParseGranularity(r.URL.Query().Get("granularity"))
	if !ok {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, msgBadGranularity, nil)
		return
	}

	points, err := h.db.Timeseries(r.Context(), scanFilterFromRequest(r), granularity)
	if err != nil {
		respondDatabaseError(w, r, "analytics_timeseries", err)
		return
	}
	respondJSONTimed(w, http.StatusOK, points, started)
}

// AnalyticsTop handles GET /api/analytics/top.
func (h *Handler) AnalyticsTop(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	limit := clampInt(queryInt(r, "limit", 10), 1, 100)

	top, err := h.db.TopLinks(r.Context(), scanFilterFromRequest(r), limit)
	if err != nil {
		respondDatabaseError(w, r, "analytics_top", err)
		return
	}
	respondJSONTimed(w, http.StatusOK, top, started)
}

// AnalyticsBreakdown handles GET /api/analytics/breakdown. The field
// parameter selects the dimension; unknown fields fall back to
// campaign.
func (h *Handler) AnalyticsBreakdown(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	dimension := database.ParseDimension(r.URL.Query().Get("field"))
	limit := clampInt(queryInt(r, "limit", 20), 1, 100)

	breakdown, err := h.db.Breakdown(r.Context(), scanFilterFromRequest(r), dimension, limit)
	if err != nil {
		respondDatabaseError(w, r, "analytics_breakdown", err)
		return
	}
	respondJSONTimed(w, http.StatusOK, breakdown, started)
}

// AnalyticsOptions handles GET /api/analytics/options: the distinct
// facet values for dashboard filter dropdowns.
func (h *Handler) AnalyticsOptions(w http.ResponseWriter, r *http.Request) {
	options, err := h.db.FilterOptions(r.Context())
	if err != nil {
		respondDatabaseError(w, r, "analytics_options", err)
		return
	}
	respondJSON(w, http.StatusOK, options)
}
