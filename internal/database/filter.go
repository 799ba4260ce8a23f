// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package database

import (
	"time"

	"github.com/soerfi/qr-wizard/internal/database/query"
)

// ScanFilter contains filter parameters for analytics queries over scan
// and conversion events.
//
// All fields are optional and combine using AND logic. Facet fields
// filter on the owning link's attributes, so a single filter narrows
// scans, conversions and link rankings consistently.
//
// Filter Dimensions:
//
//   - Start, End: inclusive bounds on the event timestamp
//     (scanned_at for scans, occurred_at for conversions)
//   - Campaign, Channel, Location, Owner: equality on link facets
//   - Status: equality on link status ("active", "paused", "archived")
//   - QRCodeID: restrict to a single link
//
// Example:
//
//	since := time.Now().UTC().AddDate(0, 0, -30)
//	filter := ScanFilter{
//	    Start:    &since,
//	    Campaign: "spring-launch",
//	    Channel:  "poster",
//	}
//
// ScanFilter is immutable after creation and safe for concurrent read
// access.
type ScanFilter struct {
	Start    *time.Time
	End      *time.Time
	Campaign string
	Channel  string
	Location string
	Owner    string
	Status   string
	QRCodeID *int64
}

// scanConditions builds WHERE conditions for queries over
// scan_events s joined with qr_codes q.
func scanConditions(filter ScanFilter) *query.WhereBuilder {
	wb := query.NewWhereBuilder()
	wb.AddTimeRange("s.scanned_at", filter.Start, filter.End)
	wb.AddID("s.qr_code_id", filter.QRCodeID)
	addLinkFacets(wb, filter)
	return wb
}

// conversionConditions builds WHERE conditions for queries over
// conversion_events c joined with qr_codes q.
func conversionConditions(filter ScanFilter) *query.WhereBuilder {
	wb := query.NewWhereBuilder()
	wb.AddTimeRange("c.occurred_at", filter.Start, filter.End)
	wb.AddID("c.qr_code_id", filter.QRCodeID)
	addLinkFacets(wb, filter)
	return wb
}

// addLinkFacets adds the link-attribute conditions shared by scan and
// conversion queries.
func addLinkFacets(wb *query.WhereBuilder, filter ScanFilter) {
	wb.AddFacet("q.campaign", filter.Campaign)
	wb.AddFacet("q.channel", filter.Channel)
	wb.AddFacet("q.location", filter.Location)
	wb.AddFacet("q.owner", filter.Owner)
	wb.AddFacet("q.status", filter.Status)
}
