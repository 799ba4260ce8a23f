// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package api

import (
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/soerfi/qr-wizard/internal/logging"
	"github.com/soerfi/qr-wizard/internal/metrics"
	"github.com/soerfi/qr-wizard/internal/models"
)

// Health handles GET /health. It answers 503 with status "degraded"
// when the database does not respond, so load balancers stop routing
// before requests start failing.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := &models.HealthStatus{
		Status:            "ok",
		Version:           Version,
		DatabaseConnected: true,
		GeoResolver:       h.geo.Name(),
		Uptime:            time.Since(h.startTime).Seconds(),
	}

	code := http.StatusOK
	if err := h.db.Ping(r.Context()); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Health check database ping failed")
		status.Status = "degraded"
		status.DatabaseConnected = false
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, status)
}

// RetentionRun handles POST /api/retention/run: an on-demand purge of
// scan and conversion events older than the retention window. The body
// may override the configured window with {"days": N}; anything else
// falls back to the configuration.
func (h *Handler) RetentionRun(w http.ResponseWriter, r *http.Request) {
	days := h.config.Retention.Days

	var req struct {
		Days int `json:"days"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err == nil && req.Days > 0 {
		days = req.Days
	}

	start := time.Now()
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	deletedScans, deletedConversions, err := h.db.PurgeOldData(r.Context(), cutoff)
	metrics.RecordRetentionPurge(time.Since(start), deletedScans, deletedConversions, err)
	if err != nil {
		respondDatabaseError(w, r, "retention_purge", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Int("retention_days", days).
		Int64("deleted_scans", deletedScans).
		Int64("deleted_conversions", deletedConversions).
		Msg("Retention purge finished")

	respondJSON(w, http.StatusOK, models.PurgeResult{
		RetentionDays:      days,
		DeletedScans:       deletedScans,
		DeletedConversions: deletedConversions,
	})
}

// DebugPerformance handles GET /api/debug/performance: per-endpoint
// latency aggregates and the most recent request samples from the
// in-process monitor.
func (h *Handler) DebugPerformance(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"endpoints": h.perfMon.GetStats(),
		"recent":    h.perfMon.GetRecentMetrics(50),
	})
}
