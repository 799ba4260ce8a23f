// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package models

import (
	"time"
)

// ScanEvent records one hit on a tracking URL. IP addresses are never
// stored: IPHash is a salted SHA-256 over the anonymized network
// (/24 for IPv4, /48 for IPv6) and VisitorFingerprint combines that
// hash with a lowercased user-agent prefix.
//
// Exactly one of IsUnique/IsDuplicate is true for a non-bot scan with
// a non-null fingerprint; bot scans and fingerprint-less scans carry
// neither flag.
type ScanEvent struct {
	ID                 int64     `json:"id"`
	QRCodeID           int64     `json:"qr_code_id"`
	ScannedAt          time.Time `json:"scanned_at"`
	IPHash             *string   `json:"ip_hash"`
	VisitorFingerprint *string   `json:"visitor_fingerprint"`
	Country            *string   `json:"country"`
	Region             *string   `json:"region"`
	City               *string   `json:"city"`
	OS                 *string   `json:"os"`
	Browser            *string   `json:"browser"`
	DeviceType         string    `json:"device_type"`
	Referrer           *string   `json:"referrer"`
	UserAgent          *string   `json:"user_agent"`
	IsBot              bool      `json:"is_bot"`
	IsUnique           bool      `json:"is_unique"`
	IsDuplicate        bool      `json:"is_duplicate"`
	QueryPayload       *string   `json:"query_payload"`
}

// Device types assigned by user-agent classification.
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceBot     = "bot"
	DeviceOther   = "other"
	DeviceUnknown = "unknown"
)

// ScanExportRow is one row of the scans CSV export: the scan joined
// with the owning link's identity and facets.
type ScanExportRow struct {
	ScanID      int64
	ScannedAt   time.Time
	Slug        string
	Name        *string
	Campaign    *string
	Channel     *string
	Location    *string
	Owner       *string
	Country     *string
	Region      *string
	City        *string
	OS          *string
	Browser     *string
	DeviceType  string
	Referrer    *string
	IsBot       bool
	IsUnique    bool
	IsDuplicate bool
}
