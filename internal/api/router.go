// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soerfi/qr-wizard/internal/config"
	"github.com/soerfi/qr-wizard/internal/middleware"
	"github.com/soerfi/qr-wizard/internal/models"
)

// Router wires the handler set into the HTTP surface.
type Router struct {
	handler *Handler
	chimw   *middleware.ChiMiddleware
}

// NewRouter creates a router around the given handler set.
func NewRouter(h *Handler) *Router {
	return &Router{
		handler: h,
		chimw:   middleware.NewChiMiddleware(chiConfig(h.config)),
	}
}

// chiConfig maps the service configuration onto the middleware stack.
func chiConfig(cfg *config.Config) *middleware.ChiMiddlewareConfig {
	mc := middleware.DefaultChiMiddlewareConfig()
	mc.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mc.RateLimitRequests = cfg.Security.RateLimitReqs
	mc.RateLimitWindow = cfg.Security.RateLimitWindow
	mc.RateLimitDisabled = cfg.Security.RateLimitDisabled
	return mc
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	// Applied to ALL routes in order
	r.Use(middleware.RequestID)         // Add X-Request-ID header with logging context
	r.Use(chimiddleware.RealIP)         // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)      // Recover from panics
	r.Use(middleware.RequestLogger)     // Structured request logging
	r.Use(middleware.PrometheusMetrics) // Request counters and latency histograms
	r.Use(h.perfMon.Middleware)         // In-process latency samples for /api/debug/performance
	r.Use(middleware.SecurityHeaders())
	r.Use(chimiddleware.Compress(5)) // gzip for JSON and SVG; binary image types pass through
	r.Use(router.chimw.CORS())       // CORS must be global to handle OPTIONS preflight

	r.NotFound(notFoundHandler)
	r.MethodNotAllowed(methodNotAllowedHandler)

	// ========================
	// Scan Hot Path & Beacons
	// ========================
	// Permissive rate limiting: these face the public, and a poster in
	// a busy spot produces bursts.
	r.Group(func(r chi.Router) {
		r.Use(router.chimw.RateLimitRedirect())
		r.Get("/t/{slug}", h.Redirect)
		r.Get("/goal.gif", h.PixelBeacon)
	})

	// ========================
	// Observability
	// ========================
	r.With(router.chimw.RateLimitHealth()).Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/", h.Root)

	// ========================
	// Session Endpoints
	// ========================
	// Login carries the strictest limit (brute force prevention);
	// logout and auth_status stay public so the dashboard can always
	// tell whether to show the login form.
	r.Route("/api", func(r chi.Router) {
		r.With(router.chimw.RateLimitLogin()).Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/auth_status", h.AuthStatus)

		// ========================
		// Admin API
		// ========================
		// Everything below requires a session.
		r.Group(func(r chi.Router) {
			r.Use(h.auth.RequireAuth)
			r.Use(router.chimw.RateLimit())

			// Link library
			r.Route("/qrcodes", func(r chi.Router) {
				r.Get("/", h.ListQRCodes)
				r.With(router.chimw.RateLimitWrite()).Post("/", h.CreateQRCode)
				r.With(router.chimw.RateLimitWrite()).Post("/bulk", h.BulkImport)
				r.With(router.chimw.RateLimitWrite()).Post("/bulk_action", h.BulkAction)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetQRCode)
					r.With(router.chimw.RateLimitWrite()).Patch("/", h.UpdateQRCode)
					r.With(router.chimw.RateLimitWrite()).Delete("/", h.DeleteQRCode)
					r.Get("/history", h.QRCodeHistory)
					r.Get("/download", h.DownloadQRCode)
				})
			})

			// Goals and conversions
			r.Route("/goals", func(r chi.Router) {
				r.Get("/", h.ListGoals)
				r.With(router.chimw.RateLimitWrite()).Post("/", h.CreateGoal)
			})
			r.With(router.chimw.RateLimitWrite()).Post("/conversions", h.RecordConversion)

			// Analytics (read-heavy, dashboard polls these)
			r.Route("/analytics", func(r chi.Router) {
				r.Use(router.chimw.RateLimitAnalytics())
				r.Get("/summary", h.AnalyticsSummary)
				r.Get("/timeseries", h.AnalyticsTimeseries)
				r.Get("/top", h.AnalyticsTop)
				r.Get("/breakdown", h.AnalyticsBreakdown)
				r.Get("/options", h.AnalyticsOptions)
			})

			// Exports (resource intensive, strict limit)
			r.Route("/export", func(r chi.Router) {
				r.Use(router.chimw.RateLimitExport())
				r.Get("/scans.csv", h.ExportScansCSV)
				r.Get("/qrcodes.csv", h.ExportQRCodesCSV)
			})

			// Library and maintenance
			r.Get("/library/stats", h.LibraryStats)
			r.With(router.chimw.RateLimitWrite()).Post("/retention/run", h.RetentionRun)
			r.Get("/debug/performance", h.DebugPerformance)
		})
	})

	return r
}

// Root answers with the service identity. There is no bundled UI; the
// dashboard is deployed separately and talks to /api.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"service": "qr-wizard",
		"version": Version,
	})
}

// notFoundHandler keeps API consumers in the JSON envelope; anything
// else gets the plain page scanners see.
func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Endpoint not found", nil)
		return
	}
	htmlMessage(w, http.StatusNotFound, "Not found", "There is nothing here.")
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, models.ErrCodeMethodNotAllowed, "Method not allowed", nil)
}
