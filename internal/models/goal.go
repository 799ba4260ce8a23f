// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package models

import (
	"time"
)

// Goal defines a conversion target. A goal scoped to a link (QRCodeID
// set) only matches conversions on that link; a global goal (QRCodeID
// null) matches any link. TargetURL, when set, enables URL-prefix
// auto-matching of beacon conversions.
type Goal struct {
	ID          int64     `json:"id"`
	QRCodeID    *int64    `json:"qr_code_id"`
	Name        string    `json:"name"`
	TargetURL   *string   `json:"target_url"`
	Description *string   `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateGoalRequest is the payload for POST /api/goals.
type CreateGoalRequest struct {
	QRCodeID    *int64  `json:"qr_code_id" validate:"omitempty,min=1"`
	Name        string  `json:"name" validate:"required,max=200"`
	TargetURL   *string `json:"target_url" validate:"omitempty,httpurl"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Active      *bool   `json:"active"`
}

// ConversionEvent records a conversion attributed to a link, optionally
// tied to a matched goal and the originating scan.
type ConversionEvent struct {
	ID                 int64     `json:"id"`
	QRCodeID           int64     `json:"qr_code_id"`
	GoalID             *int64    `json:"goal_id"`
	ScanEventID        *int64    `json:"scan_event_id"`
	EventName          *string   `json:"event_name"`
	Value              *float64  `json:"value"`
	VisitorFingerprint *string   `json:"visitor_fingerprint"`
	OccurredAt         time.Time `json:"occurred_at"`
}

// ConversionResponse echoes a stored conversion. The visitor
// fingerprint is deliberately not part of it.
type ConversionResponse struct {
	ID         int64     `json:"id"`
	QRCodeID   int64     `json:"qr_code_id"`
	GoalID     *int64    `json:"goal_id"`
	EventName  *string   `json:"event_name"`
	Value      *float64  `json:"value"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ConversionRequest is the payload for POST /api/conversions. Either
// QRCodeID or Slug identifies the link. When GoalID is absent and
// CurrentURL is provided, the recorder auto-matches the first active
// goal whose target URL is a prefix of CurrentURL.
type ConversionRequest struct {
	QRCodeID    *int64   `json:"qr_code_id" validate:"omitempty,min=1"`
	Slug        string   `json:"slug" validate:"omitempty,max=32"`
	GoalID      *int64   `json:"goal_id" validate:"omitempty,min=1"`
	ScanEventID *int64   `json:"scan_event_id" validate:"omitempty,min=1"`
	EventName   string   `json:"event_name" validate:"omitempty,max=200"`
	Value       *float64 `json:"value"`
	CurrentURL  *string  `json:"current_url" validate:"omitempty,max=2048"`
}
