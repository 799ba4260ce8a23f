// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package models

import (
	"time"
)

// Link statuses. An active link redirects; paused and archived links
// answer 410 on the public tracking path.
const (
	LinkStatusActive   = "active"
	LinkStatusPaused   = "paused"
	LinkStatusArchived = "archived"
)

// Link represents a trackable QR code link. The slug is the short
// identifier encoded into QR images via the tracking URL
// ({base}/t/{slug}); the destination URL is where scanners end up
// after the redirect applies UTM tagging and the tracking parameter.
//
// Facet fields (campaign, channel, location, asset, owner) are free-form
// labels used for filtering and analytics breakdowns. The five UTM
// fields are merged into the destination query string on redirect when
// AutoAppendUTM is set, never overwriting parameters the destination
// already carries.
//
// Dynamic is always true in this implementation: the QR image encodes
// the tracking URL, so the destination can be edited after printing.
type Link struct {
	ID             int64      `json:"id"`
	Slug           string     `json:"slug"`
	TrackingURL    string     `json:"tracking_url"`
	Name           *string    `json:"name"`
	DestinationURL string     `json:"destination_url"`
	Campaign       *string    `json:"campaign"`
	Channel        *string    `json:"channel"`
	Location       *string    `json:"location"`
	Asset          *string    `json:"asset"`
	Owner          *string    `json:"owner"`
	Notes          *string    `json:"notes"`
	Status         string     `json:"status"`
	Dynamic        bool       `json:"dynamic"`
	AutoAppendUTM  bool       `json:"auto_append_utm"`
	UTMSource      *string    `json:"utm_source"`
	UTMMedium      *string    `json:"utm_medium"`
	UTMCampaign    *string    `json:"utm_campaign"`
	UTMTerm        *string    `json:"utm_term"`
	UTMContent     *string    `json:"utm_content"`
	TotalScans     int64      `json:"total_scans"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ExpiresAt      *time.Time `json:"expires_at"`

	// Primary goal attached via the link edit path, if any.
	GoalName   *string `json:"goal_name"`
	GoalTarget *string `json:"goal_target"`
}

// IsExpired reports whether the link has an expiry in the past.
func (l *Link) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}

// CreateLinkRequest is the payload for creating a link. Only the
// destination URL is required; the slug is minted server-side.
type CreateLinkRequest struct {
	Name           string  `json:"name" validate:"omitempty,max=200"`
	DestinationURL string  `json:"destination_url" validate:"required,httpurl"`
	Campaign       *string `json:"campaign" validate:"omitempty,max=200"`
	Channel        *string `json:"channel" validate:"omitempty,max=100"`
	Location       *string `json:"location" validate:"omitempty,max=200"`
	Asset          *string `json:"asset" validate:"omitempty,max=200"`
	Owner          *string `json:"owner" validate:"omitempty,max=100"`
	Notes          *string `json:"notes" validate:"omitempty,max=2000"`
	Status         string  `json:"status" validate:"omitempty,oneof=active paused archived"`
	AutoAppendUTM  *bool   `json:"auto_append_utm"`
	UTMSource      *string `json:"utm_source" validate:"omitempty,max=200"`
	UTMMedium      *string `json:"utm_medium" validate:"omitempty,max=200"`
	UTMCampaign    *string `json:"utm_campaign" validate:"omitempty,max=200"`
	UTMTerm        *string `json:"utm_term" validate:"omitempty,max=200"`
	UTMContent     *string `json:"utm_content" validate:"omitempty,max=200"`
	ExpiresAt      *string `json:"expires_at"`

	// Optional primary goal, upserted alongside the link.
	GoalName   *string `json:"goal_name" validate:"omitempty,max=200"`
	GoalTarget *string `json:"goal_target" validate:"omitempty,httpurl"`
}

// UpdateLinkRequest is the payload for editing a link. All fields are
// optional; absent fields are left untouched. A present-but-empty
// ExpiresAt clears the expiry.
type UpdateLinkRequest struct {
	Name           *string `json:"name" validate:"omitempty,max=200"`
	DestinationURL *string `json:"destination_url" validate:"omitempty,httpurl"`
	Campaign       *string `json:"campaign" validate:"omitempty,max=200"`
	Channel        *string `json:"channel" validate:"omitempty,max=100"`
	Location       *string `json:"location" validate:"omitempty,max=200"`
	Asset          *string `json:"asset" validate:"omitempty,max=200"`
	Owner          *string `json:"owner" validate:"omitempty,max=100"`
	Notes          *string `json:"notes" validate:"omitempty,max=2000"`
	Status         *string `json:"status" validate:"omitempty,oneof=active paused archived"`
	AutoAppendUTM  *bool   `json:"auto_append_utm"`
	UTMSource      *string `json:"utm_source" validate:"omitempty,max=200"`
	UTMMedium      *string `json:"utm_medium" validate:"omitempty,max=200"`
	UTMCampaign    *string `json:"utm_campaign" validate:"omitempty,max=200"`
	UTMTerm        *string `json:"utm_term" validate:"omitempty,max=200"`
	UTMContent     *string `json:"utm_content" validate:"omitempty,max=200"`
	ExpiresAt      *string `json:"expires_at"`

	GoalName   *string `json:"goal_name" validate:"omitempty,max=200"`
	GoalTarget *string `json:"goal_target" validate:"omitempty,httpurl"`
}

// BulkActionRequest drives bulk operations over a set of link IDs.
// Action is one of "delete", "update", or "download_zip". For update,
// Data carries the facet values to apply; for download_zip, Format
// selects png or svg.
type BulkActionRequest struct {
	Action string                 `json:"action" validate:"required,oneof=delete update download_zip"`
	IDs    []int64                `json:"ids" validate:"required,min=1,dive,min=1"`
	Data   map[string]interface{} `json:"data"`
	Format string                 `json:"format" validate:"omitempty,oneof=png svg"`
	Size   int                    `json:"size"`
}

// BulkActionResult reports a bulk delete or update.
type BulkActionResult struct {
	Success bool  `json:"success"`
	Count   int64 `json:"count"`
}

// ImportedLink is the abbreviated record returned for each link a CSV
// import created.
type ImportedLink struct {
	ID             int64   `json:"id"`
	Slug           string  `json:"slug"`
	Name           *string `json:"name"`
	DestinationURL string  `json:"destination_url"`
	TrackingURL    string  `json:"tracking_url"`
}

// ImportError describes one skipped CSV row.
type ImportError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportReport summarizes a CSV bulk import.
type ImportReport struct {
	Created      []ImportedLink `json:"created"`
	CreatedIDs   []int64        `json:"created_ids"`
	CreatedCount int            `json:"created_count"`
	Errors       []ImportError  `json:"errors"`
}

// LinkList is the paginated result of a library listing.
type LinkList struct {
	Items      []*Link    `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// LinkFilter narrows library listings. Facet filters match exactly;
// Query is a case-insensitive substring search across name, slug,
// destination URL, campaign, channel, location, asset and owner.
type LinkFilter struct {
	Query    string
	Campaign string
	Channel  string
	Location string
	Owner    string
	Status   string
	Page     int
	PerPage  int
}

// LibraryStats counts links by status for the dashboard header.
type LibraryStats struct {
	Active   int64 `json:"active"`
	Paused   int64 `json:"paused"`
	Archived int64 `json:"archived"`
	Total    int64 `json:"total"`
}
