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

	"github.com/soerfi/qr-wizard/internal/logging"
	"github.com/soerfi/qr-wizard/internal/metrics"
	"github.com/soerfi/qr-wizard/internal/models"
	"github.com/soerfi/qr-wizard/internal/qrimg"
	"github.com/soerfi/qr-wizard/internal/tracking"
)

// DownloadQRCode handles GET /api/qrcodes/{id}/download: renders the
// link's tracking URL as a PNG or SVG. With preview=true the image is
// served inline for dashboard thumbnails instead of as an attachment.
func (h *Handler) DownloadQRCode(w http.ResponseWriter, r *http.Request) {
	id := idParam(w, r)
	if id == 0 {
		return
	}

	link, err := h.db.GetLink(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, msgNotFound, nil)
			return
		}
		respondDatabaseError(w, r, "get_link", err)
		return
	}

	format, err := qrimg.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, msgFormatPNGOrSVG, nil)
		return
	}
	size := qrimg.ClampSize(queryInt(r, "size", qrimg.DefaultSize))

	start := time.Now()
	img, err := qrimg.Render(tracking.TrackingURL(h.config.BaseURL(), link.Slug), format, size)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("slug", link.Slug).Msg("Failed to render image")
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to render image", nil)
		return
	}
	metrics.RecordQRRender(format.Ext(), time.Since(start))

	disposition := "attachment"
	if parseBool(r.URL.Query().Get("preview"), false) {
		disposition = "inline"
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`%s; filename="%s"`, disposition, qrimg.SafeFilename(link.Slug, strValue(link.Name), format)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Client went away during image write")
	}
}
