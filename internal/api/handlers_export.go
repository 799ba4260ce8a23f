// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package api

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/soerfi/qr-wizard/internal/logging"
	"github.com/soerfi/qr-wizard/internal/metrics"
	"github.com/soerfi/qr-wizard/internal/tracking"
)

var scanExportHeader = []string{
	"scan_id", "scanned_at", "slug", "name", "campaign", "channel",
	"location", "owner", "country", "region", "city", "os", "browser",
	"device_type", "referrer", "is_bot", "is_unique", "is_duplicate",
}

var linkExportHeader = []string{
	"id", "slug", "name", "destination_url", "tracking_url", "campaign",
	"channel", "location", "asset", "owner", "status", "auto_append_utm",
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"created_at", "updated_at",
}

// ExportScansCSV handles GET /api/export/scans.csv. The analytics
// filter parameters apply, so a dashboard view exports exactly what it
// shows.
func (h *Handler) ExportScansCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.ScansForExport(r.Context(), scanFilterFromRequest(r))
	if err != nil {
		respondDatabaseError(w, r, "export_scans", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=scans_export.csv")
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write(scanExportHeader)
	for _, row := range rows {
		_ = cw.Write([]string{
			strconv.FormatInt(row.ScanID, 10),
			row.ScannedAt.UTC().Format(time.RFC3339),
			row.Slug,
			strValue(row.Name),
			strValue(row.Campaign),
			strValue(row.Channel),
			strValue(row.Location),
			strValue(row.Owner),
			strValue(row.Country),
			strValue(row.Region),
			strValue(row.City),
			strValue(row.OS),
			strValue(row.Browser),
			row.DeviceType,
			strValue(row.Referrer),
			strconv.FormatBool(row.IsBot),
			strconv.FormatBool(row.IsUnique),
			strconv.FormatBool(row.IsDuplicate),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Client went away during CSV write")
		return
	}
	metrics.RecordExport("scans")
}

// ExportQRCodesCSV handles GET /api/export/qrcodes.csv: the full link
// library, importable elsewhere and diffable against a bulk upload.
func (h *Handler) ExportQRCodesCSV(w http.ResponseWriter, r *http.Request) {
	links, err := h.db.LinksForExport(r.Context())
	if err != nil {
		respondDatabaseError(w, r, "export_qrcodes", err)
		return
	}
	base := h.config.BaseURL()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=qrcodes_export.csv")
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write(linkExportHeader)
	for _, l := range links {
		_ = cw.Write([]string{
			strconv.FormatInt(l.ID, 10),
			l.Slug,
			strValue(l.Name),
			l.DestinationURL,
			tracking.TrackingURL(base, l.Slug),
			strValue(l.Campaign),
			strValue(l.Channel),
			strValue(l.Location),
			strValue(l.Asset),
			strValue(l.Owner),
			l.Status,
			strconv.FormatBool(l.AutoAppendUTM),
			strValue(l.UTMSource),
			strValue(l.UTMMedium),
			strValue(l.UTMCampaign),
			strValue(l.UTMTerm),
			strValue(l.UTMContent),
			l.CreatedAt.UTC().Format(time.RFC3339),
			l.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Client went away during CSV write")
		return
	}
	metrics.RecordExport("qrcodes")
}
