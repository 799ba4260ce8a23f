// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/soerfi/qr-wizard/internal/identity"
	"github.com/soerfi/qr-wizard/internal/logging"
	"github.com/soerfi/qr-wizard/internal/models"
	"github.com/soerfi/qr-wizard/internal/tracking"
)

// historyLimit caps the per-link history listing.
const historyLimit = 200

// decorate fills the computed tracking URL on a stored link.
func (h *Handler) decorate(l *models.Link) *models.Link {
	l.TrackingURL = tracking.TrackingURL(h.config.BaseURL(), l.Slug)
	return l
}

// CreateQRCode handles POST /api/qrcodes.
func (h *Handler) CreateQRCode(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.DestinationURL = strings.TrimSpace(req.DestinationURL)
	if !isHTTPURL(req.DestinationURL) {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, msgInvalidDestination, nil)
		return
	}
	req.Status = statusOrDefault(req.Status)
	if !validateRequest(w, &req) {
		return
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil && strings.TrimSpace(*req.ExpiresAt) != "" {
		ts, err := parseTimestamp(*req.ExpiresAt)
		if err != nil {
			respondError(w, http.StatusBadRequest, models.ErrCodeValidation, msgInvalidExpiry, nil)
			return
		}
		expiresAt = &ts
	}

	ctx := r.Context()
	slug, err := identity.MintSlug(func(s string) (bool, error) {
		return h.db.SlugExists(ctx, s)
	})
	if err != nil {
		respondDatabaseError(w, r, "mint_slug", err)
		return
	}

	now := time.Now().UTC()
	link := &models.Link{
		Slug:           slug,
		Name:           optString(strings.TrimSpace(req.Name)),
		DestinationURL: req.DestinationURL,
		Campaign:       normOpt(req.Campaign),
		Channel:        normOpt(req.Channel),
		Location:       normOpt(req.Location),
		Asset:          normOpt(req.Asset),
		Owner:          normOpt(req.Owner),
		Notes:          normOpt(req.Notes),
		Status:         req.Status,
		Dynamic:        true,
		AutoAppendUTM:  req.AutoAppendUTM != nil && *req.AutoAppendUTM,
		UTMSource:      normOpt(req.UTMSource),
		UTMMedium:      normOpt(req.UTMMedium),
		UTMCampaign:    normOpt(req.UTMCampaign),
		UTMTerm:        normOpt(req.UTMTerm),
		UTMContent:     normOpt(req.UTMContent),
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      expiresAt,
	}
	if err := h.db.CreateLink(ctx, link); err != nil {
		respondDatabaseError(w, r, "create_link", err)
		return
	}

	if req.GoalName != nil {
		if name := strings.TrimSpace(*req.GoalName); name != "" {
			if err := h.db.UpsertPrimaryGoal(ctx, link.ID, name, normOpt(req.GoalTarget), now); err != nil {
				respondDatabaseError(w, r, "upsert_goal", err)
				return
			}
		}
	}

	details := marshalDetails(map[string]interface{}{"destination_url": link.DestinationURL})
	if err := h.db.InsertHistory(ctx, link.ID, models.HistoryActionCreated, details, now); err != nil {
		respondDatabaseError(w, r, "insert_history", err)
		return
	}

	created, err := h.db.GetLink(ctx, link.ID)
	if err != nil {
		respondDatabaseError(w, r, "get_link", err)
		return
	}

	logging.Ctx(ctx).Info().
		Int64("qr_code_id", created.ID).
		Str("slug", created.Slug).
		Msg("Link created")

	respondJSON(w, http.StatusCreated, h.decorate(created))
}

// ListQRCodes handles GET /api/qrcodes.
func (h *Handler) ListQRCodes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	defaultPer := h.config.API.DefaultPageSize
	if defaultPer < 1 {
		defaultPer = 50
	}
	maxPer := h.config.API.MaxPageSize
	if maxPer < 1 {
		maxPer = 200
	}

	filter := models.LinkFilter{
		Query:    strings.TrimSpace(q.Get("q")),
		Campaign: q.Get("campaign"),
		Channel:  q.Get("channel"),
		Location: q.Get("location"),
		Owner:    q.Get("owner"),
		Status:   q.Get("status"),
		Page:     queryInt(r, "page", 1),
		PerPage:  clampInt(queryInt(r, "per_page", defaultPer), 1, maxPer),
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	list, err := h.db.ListLinks(r.Context(), filter)
	if err != nil {
		respondDatabaseError(w, r, "list_links", err)
		return
	}
	for _, l := range list.Items {
		h.decorate(l)
	}
	respondJSON(w, http.StatusOK, list)
}

// GetQRCode handles GET /api/qrcodes/{id}.
func (h *Handler) GetQRCode(w http.ResponseWriter, r *http.Request) {
	id := idParam(w, r)
	if id == 0 {
		return
	}

	link, err := h.db.GetLink(r.Context(), id)
	if isNotFound(err) {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, msgNotFound, nil)
		return
	}
	if err != nil {
		respondDatabaseError(w, r, "get_link", err)
		return
	}
	respondJSON(w, http.StatusOK, h.decorate(link))
}

// UpdateQRCode handles PATCH /api/qrcodes/{id}. Absent fields are left
// untouched; every applied field is echoed into the history change set
// with its new value.
func (h *Handler) UpdateQRCode(w http.ResponseWriter, r *http.Request) {
	id := idParam(w, r)
	if id == 0 {
		return
	}
	ctx := r.Context()

	link, err := h.db.GetLink(ctx, id)
	if isNotFound(err) {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, msgNotFound, nil)
		return
	}
	if err != nil {
		respondDatabaseError(w, r, "get_link", err)
		return
	}

	var req models.UpdateLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.DestinationURL != nil {
		trimmed := strings.TrimSpace(*req.DestinationURL)
		if !isHTTPURL(trimmed) {
			respondError(w, http.StatusBadRequest, models.ErrCodeValidation, msgBadDestination, nil)
			return
		}
		req.DestinationURL = &trimmed
	}
	if req.Status != nil {
		normalized := statusOrDefault(*req.Status)
		req.Status = &normalized
	}
	if !validateRequest(w, &req) {
		return
	}

	now := time.Now().UTC()
	changes := map[string]interface{}{}
	linkDirty := false

	textFields := []struct {
		name string
		src  *string
		dst  **string
	}{
		{"name", req.Name, &link.Name},
		{"campaign", req.Campaign, &link.Campaign},
		{"channel", req.Channel, &link.Channel},
		{"location", req.Location, &link.Location},
		{"asset", req.Asset, &link.Asset},
		{"owner", req.Owner, &link.Owner},
		{"notes", req.Notes, &link.Notes},
		{"utm_source", req.UTMSource, &link.UTMSource},
		{"utm_medium", req.UTMMedium, &link.UTMMedium},
		{"utm_campaign", req.UTMCampaign, &link.UTMCampaign},
		{"utm_term", req.UTMTerm, &link.UTMTerm},
		{"utm_content", req.UTMContent, &link.UTMContent},
	}
	for _, f := range textFields {
		if f.src == nil {
			continue
		}
		*f.dst = normOpt(f.src)
		changes[f.name] = *f.dst
		linkDirty = true
	}

	if req.DestinationURL != nil {
		link.DestinationURL = *req.DestinationURL
		changes["destination_url"] = link.DestinationURL
		linkDirty = true
	}
	if req.ExpiresAt != nil {
		raw := strings.TrimSpace(*req.ExpiresAt)
		if raw == "" {
			link.ExpiresAt = nil
			changes["expires_at"] = nil
		} else {
			ts, err := parseTimestamp(raw)
			if err != nil {
				respondError(w, http.StatusBadRequest, models.ErrCodeValidation, msgInvalidExpiry, nil)
				return
			}
			link.ExpiresAt = &ts
			changes["expires_at"] = ts.Format(time.RFC3339)
		}
		linkDirty = true
	}
	if req.Status != nil {
		link.Status = *req.Status
		changes["status"] = link.Status
		linkDirty = true
	}
	if req.AutoAppendUTM != nil {
		link.AutoAppendUTM = *req.AutoAppendUTM
		changes["auto_append_utm"] = link.AutoAppendUTM
		linkDirty = true
	}

	// Primary goal shortcut: a non-empty goal_name upserts the link's
	// goal, an explicitly empty one deletes it.
	if req.GoalName != nil {
		if name := strings.TrimSpace(*req.GoalName); name != "" {
			if err := h.db.UpsertPrimaryGoal(ctx, link.ID, name, normOpt(req.GoalTarget), now); err != nil {
				respondDatabaseError(w, r, "upsert_goal", err)
				return
			}
			changes["goal_updated"] = true
		} else {
			deleted, err := h.db.DeletePrimaryGoal(ctx, link.ID)
			if err != nil {
				respondDatabaseError(w, r, "delete_goal", err)
				return
			}
			if deleted {
				changes["goal_deleted"] = true
			}
		}
	}

	if linkDirty {
		link.UpdatedAt = now
		if err := h.db.UpdateLink(ctx, link); err != nil {
			respondDatabaseError(w, r, "update_link", err)
			return
		}
	}
	if len(changes) > 0 {
		if err := h.db.InsertHistory(ctx, link.ID, models.HistoryActionUpdated, marshalDetails(changes), now); err != nil {
			respondDatabaseError(w, r, "insert_history", err)
			return
		}
	}

	updated, err := h.db.GetLink(ctx, link.ID)
	if err != nil {
		respondDatabaseError(w, r, "get_link", err)
		return
	}
	respondJSON(w, http.StatusOK, h.decorate(updated))
}

// DeleteQRCode handles DELETE /api/qrcodes/{id}. Scans, conversions,
// history and goals go with the link.
func (h *Handler) DeleteQRCode(w http.ResponseWriter, r *http.Request) {
	id := idParam(w, r)
	if id == 0 {
		return
	}

	err := h.db.DeleteLink(r.Context(), id)
	if isNotFound(err) {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, msgNotFound, nil)
		return
	}
	if err != nil {
		respondDatabaseError(w, r, "delete_link", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Int64("qr_code_id", id).
		Msg("Link deleted")

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// QRCodeHistory handles GET /api/qrcodes/{id}/history.
func (h *Handler) QRCodeHistory(w http.ResponseWriter, r *http.Request) {
	id := idParam(w, r)
	if id == 0 {
		return
	}
	ctx := r.Context()

	if _, err := h.db.GetLink(ctx, id); err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, msgNotFound, nil)
			return
		}
		respondDatabaseError(w, r, "get_link", err)
		return
	}

	entries, err := h.db.ListHistory(ctx, id, historyLimit)
	if err != nil {
		respondDatabaseError(w, r, "list_history", err)
		return
	}
	if entries == nil {
		entries = []*models.HistoryEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

// LibraryStats handles GET /api/library/stats.
func (h *Handler) LibraryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.LibraryStats(r.Context())
	if err != nil {
		respondDatabaseError(w, r, "library_stats", err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
