// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package api

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/soerfi/qr-wizard/internal/identity"
	"github.com/soerfi/qr-wizard/internal/logging"
	"github.com/soerfi/qr-wizard/internal/metrics"
	"github.com/soerfi/qr-wizard/internal/models"
	"github.com/soerfi/qr-wizard/internal/qrimg"
	"github.com/soerfi/qr-wizard/internal/tracking"
)

// maxCSVBytes caps bulk import uploads.
const maxCSVBytes = 5 << 20 // 5 MiB

// destinationKeys are the CSV column names accepted for the
// destination, in priority order.
var destinationKeys = []string{"destination_url", "url", "link", "target"}

// BulkImport handles POST /api/qrcodes/bulk: a multipart CSV upload
// creating one link per valid row. Invalid rows are reported with their
// line numbers; the batch never fails as a whole.
func (h *Handler) BulkImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCSVBytes)
	if err := r.ParseMultipartForm(maxCSVBytes); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, msgCSVMissing, nil)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, msgCSVMissing, nil)
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, msgCSVNotUTF8, nil)
		return
	}
	// Spreadsheet exports often lead with a UTF-8 BOM.
	content := strings.TrimPrefix(string(raw), "\ufeff")
	if !utf8.ValidString(content) {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, msgCSVNotUTF8, nil)
		return
	}
	if strings.TrimSpace(content) == "" {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, msgCSVEmpty, nil)
		return
	}

	report, err := h.importCSV(r.Context(), content)
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation,
			"Failed to parse CSV: "+err.Error(), nil)
		return
	}

	metrics.RecordImport(report.CreatedCount, len(report.Errors))
	logging.Ctx(r.Context()).Info().
		Int("created", report.CreatedCount).
		Int("errors", len(report.Errors)).
		Msg("Bulk import finished")

	respondJSON(w, http.StatusOK, report)
}

// importCSV parses the upload and inserts one link per valid row.
func (h *Handler) importCSV(ctx context.Context, content string) (*models.ImportReport, error) {
	withHeader := hasHeaderRow(content)
	records, err := readCSV(content)
	if err != nil {
		return nil, err
	}

	var header []string
	firstRow := 1
	if withHeader && len(records) > 0 {
		header = make([]string, len(records[0]))
		for i, name := range records[0] {
			header[i] = strings.ToLower(strings.TrimSpace(name))
		}
		records = records[1:]
		firstRow = 2
	}

	report := &models.ImportReport{
		Created:    []models.ImportedLink{},
		CreatedIDs: []int64{},
		Errors:     []models.ImportError{},
	}

	now := time.Now().UTC()
	base := h.config.BaseURL()

	for i, record := range records {
		rowNum := firstRow + i
		row := rowValues(header, record)

		destination := strings.TrimSpace(firstValue(row, destinationKeys...))
		if destination == "" {
			// Blank filler rows are not worth reporting.
			continue
		}
		if !isHTTPURL(destination) {
			report.Errors = append(report.Errors, models.ImportError{
				Row:   rowNum,
				Error: fmt.Sprintf("Invalid destination_url: '%s'", destination),
			})
			continue
		}

		slug, err := identity.MintSlug(func(s string) (bool, error) {
			return h.db.SlugExists(ctx, s)
		})
		if err != nil {
			logging.Ctx(ctx).Error().Err(err).Int("row", rowNum).Msg("Bulk import row failed")
			report.Errors = append(report.Errors, models.ImportError{Row: rowNum, Error: "Failed to save row"})
			continue
		}

		link := &models.Link{
			Slug:           slug,
			Name:           optString(strings.TrimSpace(row["name"])),
			DestinationURL: destination,
			Campaign:       optString(strings.TrimSpace(row["campaign"])),
			Channel:        optString(strings.TrimSpace(row["channel"])),
			Location:       optString(strings.TrimSpace(row["location"])),
			Asset:          optString(strings.TrimSpace(row["asset"])),
			Owner:          optString(strings.TrimSpace(row["owner"])),
			Notes:          optString(strings.TrimSpace(row["notes"])),
			Status:         csvStatus(row["status"]),
			Dynamic:        true,
			AutoAppendUTM:  parseBool(row["auto_append_utm"], false),
			UTMSource:      optString(strings.TrimSpace(row["utm_source"])),
			UTMMedium:      optString(strings.TrimSpace(row["utm_medium"])),
			UTMCampaign:    optString(strings.TrimSpace(row["utm_campaign"])),
			UTMTerm:        optString(strings.TrimSpace(row["utm_term"])),
			UTMContent:     optString(strings.TrimSpace(row["utm_content"])),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := h.db.CreateLink(ctx, link); err != nil {
			logging.Ctx(ctx).Error().Err(err).Int("row", rowNum).Msg("Bulk import row failed")
			report.Errors = append(report.Errors, models.ImportError{Row: rowNum, Error: "Failed to save row"})
			continue
		}

		details := marshalDetails(map[string]interface{}{"row": rowNum})
		if err := h.db.InsertHistory(ctx, link.ID, models.HistoryActionCreatedBulk, details, now); err != nil {
			logging.Ctx(ctx).Error().Err(err).Int64("qr_code_id", link.ID).Msg("Failed to record import history")
		}

		report.Created = append(report.Created, models.ImportedLink{
			ID:             link.ID,
			Slug:           link.Slug,
			Name:           link.Name,
			DestinationURL: link.DestinationURL,
			TrackingURL:    tracking.TrackingURL(base, link.Slug),
		})
		report.CreatedIDs = append(report.CreatedIDs, link.ID)
	}

	report.CreatedCount = len(report.Created)
	return report, nil
}

// BulkAction handles POST /api/qrcodes/bulk_action: delete, update or
// download_zip over a set of link ids.
func (h *Handler) BulkAction(w http.ResponseWriter, r *http.Request) {
	var req models.BulkActionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, msgNoIDs, nil)
		return
	}

	links, err := h.db.ListLinksByIDs(r.Context(), req.IDs)
	if err != nil {
		respondDatabaseError(w, r, "list_links_by_ids", err)
		return
	}
	if len(links) == 0 {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, msgNoValidLinks, nil)
		return
	}

	switch req.Action {
	case "delete":
		h.bulkDelete(w, r, links)
	case "update":
		h.bulkUpdate(w, r, links, req.Data)
	case "download_zip":
		h.bulkDownloadZip(w, r, links, req.Format, req.Size)
	default:
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, msgInvalidAction, nil)
	}
}

func (h *Handler) bulkDelete(w http.ResponseWriter, r *http.Request, links []*models.Link) {
	ids := make([]int64, len(links))
	for i, l := range links {
		ids[i] = l.ID
	}

	count, err := h.db.DeleteLinks(r.Context(), ids)
	if err != nil {
		respondDatabaseError(w, r, "bulk_delete", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Int64("count", count).
		Msg("Bulk delete finished")

	respondJSON(w, http.StatusOK, models.BulkActionResult{Success: true, Count: count})
}

// bulkUpdate applies the provided, non-empty fields of data to every
// link and reports how many links actually changed.
func (h *Handler) bulkUpdate(w http.ResponseWriter, r *http.Request, links []*models.Link, data map[string]interface{}) {
	set := map[string]interface{}{}

	for _, name := range []string{"campaign", "channel", "location", "owner"} {
		raw, ok := data[name]
		if !ok || !jsonTruthy(raw) {
			continue
		}
		if s, isStr := raw.(string); isStr {
			set[name] = strings.TrimSpace(s)
		}
	}
	if raw, ok := data["status"]; ok && jsonTruthy(raw) {
		if s, isStr := raw.(string); isStr {
			set["status"] = csvStatus(s)
		}
	}
	if raw, ok := data["auto_append_utm"]; ok && jsonTruthy(raw) {
		set["auto_append_utm"] = jsonBool(raw)
	}
	if raw, ok := data["expires_at"]; ok && jsonTruthy(raw) {
		// An unparseable date skips the field rather than failing the
		// batch.
		if s, isStr := raw.(string); isStr {
			if ts, err := parseTimestamp(s); err == nil {
				set["expires_at"] = ts
			}
		}
	}

	var changedIDs []int64
	for _, l := range links {
		if linkNeedsUpdate(l, set) {
			changedIDs = append(changedIDs, l.ID)
		}
	}

	var count int64
	if len(changedIDs) > 0 {
		n, err := h.db.BulkUpdateLinks(r.Context(), changedIDs, set, time.Now().UTC())
		if err != nil {
			respondDatabaseError(w, r, "bulk_update", err)
			return
		}
		count = n
	}

	respondJSON(w, http.StatusOK, models.BulkActionResult{Success: true, Count: count})
}

// linkNeedsUpdate reports whether applying set would change l.
func linkNeedsUpdate(l *models.Link, set map[string]interface{}) bool {
	for name, value := range set {
		switch name {
		case "campaign":
			if strValue(l.Campaign) != value.(string) {
				return true
			}
		case "channel":
			if strValue(l.Channel) != value.(string) {
				return true
			}
		case "location":
			if strValue(l.Location) != value.(string) {
				return true
			}
		case "owner":
			if strValue(l.Owner) != value.(string) {
				return true
			}
		case "status":
			if l.Status != value.(string) {
				return true
			}
		case "auto_append_utm":
			if l.AutoAppendUTM != value.(bool) {
				return true
			}
		case "expires_at":
			ts := value.(time.Time)
			if l.ExpiresAt == nil || !l.ExpiresAt.Equal(ts) {
				return true
			}
		}
	}
	return false
}

// bulkDownloadZip streams a ZIP archive with one rendered image per
// link.
func (h *Handler) bulkDownloadZip(w http.ResponseWriter, r *http.Request, links []*models.Link, rawFormat string, size int) {
	format, err := qrimg.ParseFormat(rawFormat)
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, msgInvalidFormat, nil)
		return
	}
	base := h.config.BaseURL()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="qrcodes_%s.zip"`, format.Ext()))
	w.WriteHeader(http.StatusOK)

	zw := zip.NewWriter(w)
	for _, l := range links {
		start := time.Now()
		img, err := qrimg.Render(tracking.TrackingURL(base, l.Slug), format, size)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Str("slug", l.Slug).Msg("Failed to render archive entry")
			continue
		}
		metrics.RecordQRRender(format.Ext(), time.Since(start))

		entry, err := zw.Create(qrimg.ZipEntryName(l.Slug, strValue(l.Name), format))
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Str("slug", l.Slug).Msg("Failed to add archive entry")
			break
		}
		if _, err := entry.Write(img); err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Str("slug", l.Slug).Msg("Failed to write archive entry")
			break
		}
	}
	if err := zw.Close(); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to finalize archive")
	}
	metrics.RecordExport("zip")
}
