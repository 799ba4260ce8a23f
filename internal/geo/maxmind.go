// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package geo

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// maxmindResolver resolves against a local MaxMind GeoIP2/GeoLite2
// City database.
type maxmindResolver struct {
	reader *geoip2.Reader
}

// NewMaxMind opens a MaxMind City database at path. The caller should
// fall back to NewNoop when this fails; a missing database is a
// degraded mode, not a startup failure.
func NewMaxMind(path string) (Resolver, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening geoip database %s: %w", path, err)
	}
	return &maxmindResolver{reader: reader}, nil
}

func (m *maxmindResolver) Resolve(ip string) Location {
	if loc, done := classifyAddr(ip); done {
		return loc
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Location{}
	}
	record, err := m.reader.City(parsed)
	if err != nil {
		return Location{}
	}

	loc := Location{
		Country: englishName(record.Country.Names),
		City:    englishName(record.City.Names),
	}
	// Subdivisions are ordered least to most specific.
	if n := len(record.Subdivisions); n > 0 {
		loc.Region = englishName(record.Subdivisions[n-1].Names)
	}
	return loc
}

func (m *maxmindResolver) Name() string { return "maxmind" }

func (m *maxmindResolver) Close() error { return m.reader.Close() }

func englishName(names map[string]string) *string {
	if name, ok := names["en"]; ok && name != "" {
		return &name
	}
	return nil
}
