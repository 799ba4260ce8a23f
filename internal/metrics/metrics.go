// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - Redirect hot path and scan recording
// - QR image rendering
// - Conversion tracking
// - Database query performance (DuckDB)
// - API endpoint latency and throughput
// - Retention purges

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets, // 0.005s, 0.01s, 0.025s, 0.05s, 0.1s, 0.25s, 0.5s, 1s, 2.5s, 5s, 10s
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	DBConnectionPoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "duckdb_connection_pool_size",
			Help: "Current number of database connections in use",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, // Optimized for API latency
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Redirect Hot Path Metrics
	RedirectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redirects_total",
			Help: "Total number of tracking URL hits by outcome",
		},
		[]string{"outcome"}, // "redirected", "not_found", "paused", "archived", "expired"
	)

	RedirectDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "redirect_duration_seconds",
			Help:    "Duration of redirect handling including scan logging",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	ScansRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scans_recorded_total",
			Help: "Total number of scan events recorded",
		},
		[]string{"device_type"},
	)

	BotScans = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scans_bot_total",
			Help: "Total number of scans classified as bot traffic",
		},
	)

	UniqueScans = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scans_unique_total",
			Help: "Total number of scans from first-seen visitors within the uniqueness window",
		},
	)

	DuplicateScans = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scans_duplicate_total",
			Help: "Total number of repeat scans within the uniqueness window",
		},
	)

	// QR Rendering Metrics
	QRImagesRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qr_images_rendered_total",
			Help: "Total number of QR images rendered",
		},
		[]string{"format"}, // "png", "svg"
	)

	QRRenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qr_render_duration_seconds",
			Help:    "Duration of QR image rendering in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		},
		[]string{"format"},
	)

	// Conversion Metrics
	ConversionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversions_recorded_total",
			Help: "Total number of conversion events recorded",
		},
		[]string{"attribution"}, // "goal_id", "auto_matched", "unmatched"
	)

	PixelBeaconHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pixel_beacon_hits_total",
			Help: "Total number of conversion pixel beacon requests",
		},
	)

	// Geolocation Metrics
	GeoLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geo_lookups_total",
			Help: "Total number of GeoIP lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error", "disabled"
	)

	GeoLookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "geo_lookup_duration_seconds",
			Help:    "Duration of GeoIP database lookups",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	// Import / Export Metrics
	ImportRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_rows_total",
			Help: "Total number of CSV import rows by result",
		},
		[]string{"result"}, // "created", "skipped"
	)

	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exports_total",
			Help: "Total number of export downloads",
		},
		[]string{"kind"}, // "scans", "qrcodes", "zip"
	)

	// Retention Metrics
	RetentionPurgeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "retention_purge_duration_seconds",
			Help:    "Duration of retention purge runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
	)

	RetentionScansPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retention_scans_purged_total",
			Help: "Total number of scan events deleted by retention purges",
		},
	)

	RetentionConversionsPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retention_conversions_purged_total",
			Help: "Total number of conversion events deleted by retention purges",
		},
	)

	RetentionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retention_errors_total",
			Help: "Total number of failed retention purge runs",
		},
	)

	RetentionLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "retention_last_success_timestamp",
			Help: "Unix timestamp of last successful retention purge",
		},
	)

	// Auth Metrics
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total number of admin login attempts by result",
		},
		[]string{"result"}, // "success", "failure", "rate_limited"
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRedirect records the outcome of a tracking URL hit.
func RecordRedirect(outcome string, duration time.Duration) {
	RedirectsTotal.WithLabelValues(outcome).Inc()
	RedirectDuration.Observe(duration.Seconds())
}

// RecordScan records a logged scan event and its classification flags.
func RecordScan(deviceType string, isBot, isUnique, isDuplicate bool) {
	ScansRecorded.WithLabelValues(deviceType).Inc()
	if isBot {
		BotScans.Inc()
	}
	if isUnique {
		UniqueScans.Inc()
	}
	if isDuplicate {
		DuplicateScans.Inc()
	}
}

// RecordQRRender records a rendered QR image.
func RecordQRRender(format string, duration time.Duration) {
	QRImagesRendered.WithLabelValues(format).Inc()
	QRRenderDuration.WithLabelValues(format).Observe(duration.Seconds())
}

// RecordConversion records a conversion event. attribution is "goal_id"
// when the caller named the goal, "auto_matched" when a goal matched by
// target URL prefix, and "unmatched" otherwise.
func RecordConversion(attribution string) {
	ConversionsRecorded.WithLabelValues(attribution).Inc()
}

// RecordPixelBeacon records a conversion pixel request.
func RecordPixelBeacon() {
	PixelBeaconHits.Inc()
}

// RecordGeoLookup records a GeoIP lookup and its result.
func RecordGeoLookup(result string, duration time.Duration) {
	GeoLookups.WithLabelValues(result).Inc()
	GeoLookupDuration.Observe(duration.Seconds())
}

// RecordImport records the outcome counts of a CSV import.
func RecordImport(created, skipped int) {
	ImportRows.WithLabelValues("created").Add(float64(created))
	ImportRows.WithLabelValues("skipped").Add(float64(skipped))
}

// RecordExport records an export download.
func RecordExport(kind string) {
	ExportsTotal.WithLabelValues(kind).Inc()
}

// RecordRetentionPurge records a retention purge run.
func RecordRetentionPurge(duration time.Duration, scans, conversions int64, err error) {
	RetentionPurgeDuration.Observe(duration.Seconds())
	if err != nil {
		RetentionErrors.Inc()
		return
	}
	RetentionScansPurged.Add(float64(scans))
	RetentionConversionsPurged.Add(float64(conversions))
	RetentionLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordLoginAttempt records an admin login attempt by result.
func RecordLoginAttempt(result string) {
	LoginAttempts.WithLabelValues(result).Inc()
}
