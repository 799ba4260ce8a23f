// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

// Package geo resolves client IPs to coarse locations. Resolution is
// best-effort: the service runs fully without a GeoIP database, and
// lookup failures degrade to unknown rather than erroring the scan.
package geo

import (
	"net/netip"
)

// Location is a coarse, IP-derived position. All fields are optional;
// city-level accuracy is not guaranteed by IP geolocation.
type Location struct {
	Country *string
	Region  *string
	City    *string
}

// Resolver maps an IP address to a Location. Implementations never
// fail a lookup: unknown or unresolvable inputs yield an empty
// Location.
type Resolver interface {
	// Resolve returns the location for ip. Private and loopback
	// addresses resolve to country "Private" without a database hit.
	Resolve(ip string) Location

	// Name identifies the resolver backend for health reporting.
	Name() string

	// Close releases any underlying database handle.
	Close() error
}

// classifyAddr applies the resolution rules that precede any database
// lookup. It reports whether resolution is already complete.
func classifyAddr(ip string) (Location, bool) {
	if ip == "" {
		return Location{}, true
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return Location{}, true
	}
	if addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast() {
		private := "Private"
		return Location{Country: &private}, true
	}
	return Location{}, false
}

// NewNoop returns a resolver without a geo database. It still labels
// private address space so dashboards can separate internal traffic.
func NewNoop() Resolver {
	return noopResolver{}
}

type noopResolver struct{}

func (noopResolver) Resolve(ip string) Location {
	loc, _ := classifyAddr(ip)
	return loc
}

func (noopResolver) Name() string { return "disabled" }

func (noopResolver) Close() error { return nil }
