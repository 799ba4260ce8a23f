// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/soerfi/qr-wizard/internal/geo"
	"github.com/soerfi/qr-wizard/internal/identity"
	"github.com/soerfi/qr-wizard/internal/logging"
	"github.com/soerfi/qr-wizard/internal/metrics"
	"github.com/soerfi/qr-wizard/internal/models"
	"github.com/soerfi/qr-wizard/internal/tracking"
)

// Redirect handles GET /t/{slug}, the scan hot path. It resolves the
// slug, lazily archives links past their expiry, logs the scan and
// issues a 302 to the composed destination. Scan logging must never
// block or fail the redirect itself.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	slug := chi.URLParam(r, "slug")

	link, err := h.db.GetLinkBySlug(r.Context(), slug)
	if err != nil {
		if !isNotFound(err) {
			logging.Ctx(r.Context()).Error().Err(err).
				Str("slug", sanitizeLogValue(slug)).
				Msg("Redirect lookup failed")
		}
		metrics.RecordRedirect("not_found", time.Since(start))
		htmlMessage(w, http.StatusNotFound, "Not found", "This QR Code does not exist.")
		return
	}

	now := time.Now().UTC()
	outcome := link.Status
	if link.Status == models.LinkStatusActive && link.ExpiresAt != nil && !link.ExpiresAt.After(now) {
		if err := h.db.SetLinkStatus(r.Context(), link.ID, models.LinkStatusArchived, now); err != nil {
			logging.Ctx(r.Context()).Error().Err(err).
				Int64("qr_code_id", link.ID).
				Msg("Failed to archive expired link")
		}
		link.Status = models.LinkStatusArchived
		outcome = "expired"
	}
	if link.Status != models.LinkStatusActive {
		metrics.RecordRedirect(outcome, time.Since(start))
		htmlMessage(w, http.StatusGone, "Link unavailable",
			fmt.Sprintf("This QR Code is currently %s.", link.Status))
		return
	}

	h.logScan(r, link, now)

	dest := tracking.BuildRedirectURL(link, h.config.Tracking.Param)
	metrics.RecordRedirect("redirected", time.Since(start))
	http.Redirect(w, r, dest, http.StatusFound)
}

// logScan records the scan event for a served redirect. Errors are
// logged and swallowed; the visitor is redirected regardless.
func (h *Handler) logScan(r *http.Request, link *models.Link, now time.Time) {
	ctx := r.Context()

	ip := identity.ClientIP(r)
	ua := r.UserAgent()
	ipHash := h.hasher.HashIP(ip)
	fingerprint := identity.Fingerprint(ipHash, ua)
	isBot := identity.IsBot(ua)

	// Uniqueness is judged per link against the sliding window, and
	// only for non-bot visitors we could fingerprint.
	var isUnique, isDuplicate bool
	if !isBot && fingerprint != nil {
		since := now.Add(-time.Duration(h.config.Tracking.UniqueWindowHours) * time.Hour)
		seen, err := h.db.HasRecentScan(ctx, link.ID, *fingerprint, since)
		if err != nil {
			logging.Ctx(ctx).Error().Err(err).
				Int64("qr_code_id", link.ID).
				Msg("Uniqueness check failed")
		} else if seen {
			isDuplicate = true
		} else {
			isUnique = true
		}
	}

	// Geo resolution sees the raw IP; only the hash is stored.
	loc := h.resolveGeo(ip)
	device := identity.ParseDevice(ua)

	scan := &models.ScanEvent{
		QRCodeID:           link.ID,
		ScannedAt:          now,
		IPHash:             ipHash,
		VisitorFingerprint: fingerprint,
		Country:            loc.Country,
		Region:             loc.Region,
		City:               loc.City,
		OS:                 device.OS,
		Browser:            device.Browser,
		DeviceType:         device.DeviceType,
		Referrer:           optString(r.Referer()),
		UserAgent:          optString(ua),
		IsBot:              isBot,
		IsUnique:           isUnique,
		IsDuplicate:        isDuplicate,
		QueryPayload:       queryPayload(r),
	}
	if err := h.db.InsertScan(ctx, scan); err != nil {
		logging.Ctx(ctx).Error().Err(err).
			Int64("qr_code_id", link.ID).
			Msg("Failed to record scan")
		return
	}
	metrics.RecordScan(device.DeviceType, isBot, isUnique, isDuplicate)
}

func (h *Handler) resolveGeo(ip string) geo.Location {
	start := time.Now()
	loc := h.geo.Resolve(ip)

	result := "miss"
	switch {
	case h.geo.Name() == "disabled":
		result = "disabled"
	case loc.Country != nil || loc.Region != nil || loc.City != nil:
		result = "hit"
	}
	metrics.RecordGeoLookup(result, time.Since(start))
	return loc
}

// queryPayload preserves the landing query string as JSON, keyed by
// parameter with list values so repeated parameters survive.
func queryPayload(r *http.Request) *string {
	values := r.URL.Query()
	if len(values) == 0 {
		return nil
	}
	doc := make(map[string]interface{}, len(values))
	for key, list := range values {
		doc[key] = list
	}
	return marshalDetails(doc)
}

// htmlMessage writes a bare-bones human-facing page. The redirect
// endpoints face scanners, not the JSON API's consumers.
func htmlMessage(w http.ResponseWriter, status int, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	fmt.Fprintf(w, "<!doctype html><html><head><title>%s</title></head><body><h1>%s</h1><p>%s</p></body></html>", title, title, body)
}
