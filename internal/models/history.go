// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package models

import (
	"time"
)

// HistoryEntry is an audit trail record for a link. Details holds a
// JSON document describing the change, e.g. {"destination_url":
// {"old": "...", "new": "..."}} for edits.
type HistoryEntry struct {
	ID        int64     `json:"id"`
	QRCodeID  int64     `json:"qr_code_id"`
	Action    string    `json:"action"`
	Details   *string   `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// History actions recorded by the link manager.
const (
	HistoryActionCreated     = "created"
	HistoryActionCreatedBulk = "created_bulk"
	HistoryActionUpdated     = "updated"
)
