// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/soerfi/qr-wizard/internal/identity"
	"github.com/soerfi/qr-wizard/internal/logging"
	"github.com/soerfi/qr-wizard/internal/metrics"
	"github.com/soerfi/qr-wizard/internal/models"
)

// pixelGIF is a 1x1 transparent GIF, served to conversion beacons.
var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

// CreateGoal handles POST /api/goals.
func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req models.CreateGoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, msgGoalNameRequired, nil)
		return
	}
	if req.QRCodeID != nil && *req.QRCodeID > 0 {
		if _, err := h.db.GetLink(r.Context(), *req.QRCodeID); err != nil {
			if isNotFound(err) {
				respondError(w, http.StatusNotFound, models.ErrCodeNotFound, msgNotFound, nil)
				return
			}
			respondDatabaseError(w, r, "get_link", err)
			return
		}
	} else {
		req.QRCodeID = nil
	}
	target := normOpt(req.TargetURL)
	if target != nil && !isHTTPURL(*target) {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, msgGoalTargetURL, nil)
		return
	}
	req.TargetURL = target
	if !validateRequest(w, &req) {
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	goal := &models.Goal{
		QRCodeID:    req.QRCodeID,
		Name:        req.Name,
		TargetURL:   target,
		Description: normOpt(req.Description),
		Active:      active,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.db.CreateGoal(r.Context(), goal); err != nil {
		respondDatabaseError(w, r, "create_goal", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Int64("goal_id", goal.ID).
		Str("name", sanitizeLogValue(goal.Name)).
		Msg("Goal created")

	respondJSON(w, http.StatusCreated, goal)
}

// ListGoals handles GET /api/goals, optionally filtered by qr_code_id.
func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	var qrCodeID *int64
	if raw := r.URL.Query().Get("qr_code_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err == nil && id > 0 {
			qrCodeID = &id
		}
	}

	goals, err := h.db.ListGoals(r.Context(), qrCodeID)
	if err != nil {
		respondDatabaseError(w, r, "list_goals", err)
		return
	}
	if goals == nil {
		goals = []*models.Goal{}
	}
	respondJSON(w, http.StatusOK, goals)
}

// RecordConversion handles POST /api/conversions: attributes a
// conversion to a link, resolving the goal by explicit id or by target
// URL prefix, and the visitor by scan event or by request fingerprint.
func (h *Handler) RecordConversion(w http.ResponseWriter, r *http.Request) {
	var req models.ConversionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	var link *models.Link
	if req.QRCodeID != nil && *req.QRCodeID > 0 {
		l, err := h.db.GetLink(r.Context(), *req.QRCodeID)
		if err != nil && !isNotFound(err) {
			respondDatabaseError(w, r, "get_link", err)
			return
		}
		link = l
	} else if req.Slug != "" {
		l, err := h.db.GetLinkBySlug(r.Context(), req.Slug)
		if err != nil && !isNotFound(err) {
			respondDatabaseError(w, r, "get_link_by_slug", err)
			return
		}
		link = l
	}
	if link == nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, msgConversionLink, nil)
		return
	}

	attribution := "unmatched"
	var goalID *int64
	if req.GoalID != nil && *req.GoalID > 0 {
		goal, err := h.db.GetGoal(r.Context(), *req.GoalID)
		if err != nil {
			if isNotFound(err) {
				respondError(w, http.StatusBadRequest, models.ErrCodeValidation, msgGoalIDNotFound, nil)
				return
			}
			respondDatabaseError(w, r, "get_goal", err)
			return
		}
		goalID = &goal.ID
		attribution = "goal_id"
	} else if req.CurrentURL != nil && strings.TrimSpace(*req.CurrentURL) != "" {
		goal, err := h.db.MatchGoal(r.Context(), link.ID, strings.TrimSpace(*req.CurrentURL))
		if err != nil {
			respondDatabaseError(w, r, "match_goal", err)
			return
		}
		if goal != nil {
			goalID = &goal.ID
			attribution = "auto_matched"
		}
	}

	var scanEventID *int64
	var fingerprint *string
	if req.ScanEventID != nil && *req.ScanEventID > 0 {
		scan, err := h.db.GetScan(r.Context(), *req.ScanEventID)
		if err != nil {
			if isNotFound(err) {
				respondError(w, http.StatusBadRequest, models.ErrCodeValidation, msgScanIDNotFound, nil)
				return
			}
			respondDatabaseError(w, r, "get_scan", err)
			return
		}
		scanEventID = &scan.ID
		fingerprint = scan.VisitorFingerprint
	} else {
		ipHash := h.hasher.HashIP(identity.ClientIP(r))
		fingerprint = identity.Fingerprint(ipHash, r.UserAgent())
	}

	eventName := strings.TrimSpace(req.EventName)
	if eventName == "" {
		eventName = "conversion"
	}

	conv := &models.ConversionEvent{
		QRCodeID:           link.ID,
		GoalID:             goalID,
		ScanEventID:        scanEventID,
		EventName:          &eventName,
		Value:              req.Value,
		VisitorFingerprint: fingerprint,
		OccurredAt:         time.Now().UTC(),
	}
	if err := h.db.InsertConversion(r.Context(), conv); err != nil {
		respondDatabaseError(w, r, "insert_conversion", err)
		return
	}
	metrics.RecordConversion(attribution)

	respondJSON(w, http.StatusCreated, models.ConversionResponse{
		ID:         conv.ID,
		QRCodeID:   conv.QRCodeID,
		GoalID:     conv.GoalID,
		EventName:  conv.EventName,
		Value:      conv.Value,
		OccurredAt: conv.OccurredAt,
	})
}

// PixelBeacon handles GET /goal.gif: a fire-and-forget conversion
// beacon for landing pages. It always answers with the transparent
// pixel; an unknown slug or a storage failure is invisible to the
// page embedding it.
func (h *Handler) PixelBeacon(w http.ResponseWriter, r *http.Request) {
	metrics.RecordPixelBeacon()

	eventName := strings.TrimSpace(r.URL.Query().Get("event_name"))
	if eventName == "" {
		eventName = "goal"
	}

	if slug := r.URL.Query().Get("slug"); slug != "" {
		link, err := h.db.GetLinkBySlug(r.Context(), slug)
		switch {
		case err != nil && !isNotFound(err):
			logging.Ctx(r.Context()).Error().Err(err).Msg("Beacon link lookup failed")
		case err == nil:
			ipHash := h.hasher.HashIP(identity.ClientIP(r))
			conv := &models.ConversionEvent{
				QRCodeID:           link.ID,
				EventName:          &eventName,
				VisitorFingerprint: identity.Fingerprint(ipHash, r.UserAgent()),
				OccurredAt:         time.Now().UTC(),
			}
			if err := h.db.InsertConversion(r.Context(), conv); err != nil {
				logging.Ctx(r.Context()).Error().Err(err).
					Int64("qr_code_id", link.ID).
					Msg("Failed to record beacon conversion")
			} else {
				metrics.RecordConversion("unmatched")
			}
		}
	}

	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	w.Header().Set("Content-Length", strconv.Itoa(len(pixelGIF)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pixelGIF); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Client went away during pixel write")
	}
}
