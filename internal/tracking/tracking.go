// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

// Package tracking composes redirect URLs: UTM tagging and the
// tracking parameter that ties a landing-page visit back to its slug.
//
// Merging is strictly non-overwriting. Operators may pre-tag
// destination URLs by hand, and a parameter the destination already
// carries is preserved verbatim, even when it collides with a link's
// UTM fields or the tracking parameter itself.
package tracking

import (
	"net/url"
	"strings"

	"github.com/soerfi/qr-wizard/internal/models"
)

// queryPair is one decoded query parameter. Pairs keep their original
// order and duplicate keys survive the round trip.
type queryPair struct {
	key   string
	value string
}

// TrackingURL returns the public scan URL for a slug.
func TrackingURL(base, slug string) string {
	return strings.TrimRight(base, "/") + "/t/" + slug
}

// BuildRedirectURL produces the final 302 target for a link: the
// destination URL with UTM fields merged (when enabled) and the
// tracking parameter appended.
func BuildRedirectURL(link *models.Link, trackingParam string) string {
	dest := ApplyUTM(link.DestinationURL, link)
	return AppendTrackingParam(dest, trackingParam, link.Slug)
}

// ApplyUTM merges the link's non-empty UTM fields into the URL query
// string. Parameters already present keep their existing value. A
// link with AutoAppendUTM disabled passes through unchanged.
func ApplyUTM(rawURL string, link *models.Link) string {
	if !link.AutoAppendUTM {
		return rawURL
	}

	fields := []struct {
		key   string
		value *string
	}{
		{"utm_source", link.UTMSource},
		{"utm_medium", link.UTMMedium},
		{"utm_campaign", link.UTMCampaign},
		{"utm_term", link.UTMTerm},
		{"utm_content", link.UTMContent},
	}

	var add []queryPair
	for _, f := range fields {
		if f.value != nil && *f.value != "" {
			add = append(add, queryPair{f.key, *f.value})
		}
	}
	if len(add) == 0 {
		return rawURL
	}
	return mergeParams(rawURL, add)
}

// AppendTrackingParam adds param=slug to the URL unless the parameter
// is already present. An empty param name disables tracking.
func AppendTrackingParam(rawURL, param, slug string) string {
	if param == "" {
		return rawURL
	}
	return mergeParams(rawURL, []queryPair{{param, slug}})
}

// mergeParams appends each pair whose key is absent from the URL's
// query string. Existing parameters keep their order and values.
func mergeParams(rawURL string, add []queryPair) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	pairs := parsePairs(u.RawQuery)
	present := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		present[p.key] = true
	}
	for _, p := range add {
		if !present[p.key] {
			pairs = append(pairs, p)
			present[p.key] = true
		}
	}

	u.RawQuery = encodePairs(pairs)
	return u.String()
}

// parsePairs decodes a raw query string into ordered pairs. Blank
// values are kept; undecodable segments pass through as-is.
func parsePairs(rawQuery string) []queryPair {
	if rawQuery == "" {
		return nil
	}
	var pairs []queryPair
	for _, segment := range strings.Split(rawQuery, "&") {
		if segment == "" {
			continue
		}
		key, value, _ := strings.Cut(segment, "=")
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		pairs = append(pairs, queryPair{key, value})
	}
	return pairs
}

func encodePairs(pairs []queryPair) string {
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}
