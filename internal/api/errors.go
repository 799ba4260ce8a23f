// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package api

// User-facing error messages. These are part of the API contract; the
// dashboard matches on some of them, so change them deliberately.
const (
	msgNotFound           = "QR Code not found"
	msgInvalidBody        = "Invalid JSON body"
	msgInvalidDestination = "Please provide a valid http(s) destination_url"
	msgBadDestination     = "Invalid destination_url"
	msgInvalidExpiry      = "Invalid date format for expires_at"
	msgCSVMissing         = "Please upload a CSV file under the 'file' field"
	msgCSVNotUTF8         = "Could not read CSV file as UTF-8"
	msgCSVEmpty           = "CSV file is empty"
	msgNoIDs              = "No IDs provided"
	msgNoValidLinks       = "No valid QR codes found"
	msgInvalidFormat      = "Invalid format"
	msgInvalidAction      = "Invalid action"
	msgFormatPNGOrSVG     = "format must be png or svg"
	msgGoalNameRequired   = "Goal name is required"
	msgGoalTargetURL      = "target_url must be a valid http(s) URL"
	msgConversionLink     = "Provide a valid qr_code_id or slug"
	msgGoalIDNotFound     = "goal_id not found"
	msgScanIDNotFound     = "scan_event_id not found"
	msgBadGranularity     = "granularity must be hour, day, week, or month"
	msgInvalidPassword    = "Invalid password"
)
