// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// fingerprintUAPrefix caps how much of the user agent feeds the
// visitor fingerprint. Long tails add entropy without identity value.
const fingerprintUAPrefix = 300

// Hasher derives privacy-preserving identifiers from client requests.
// The salt comes from configuration; rotating it breaks fingerprint
// continuity across the rotation, which is an explicit operator choice.
type Hasher struct {
	salt string
}

// NewHasher returns a Hasher using the given salt.
func NewHasher(salt string) *Hasher {
	return &Hasher{salt: salt}
}

// AnonymizeIP truncates an IP to its /24 (IPv4) or /48 (IPv6) network
// and renders it as "network/prefixlen", e.g. "203.0.113.0/24" or
// "2001:db8:1234::/48". Returns "" for unparseable input.
func AnonymizeIP(ipStr string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(ipStr))
	if err != nil {
		return ""
	}
	// 4-in-6 addresses anonymize as IPv4.
	if addr.Is4In6() {
		addr = addr.Unmap()
	}

	bits := 48
	if addr.Is4() {
		bits = 24
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s/%d", prefix.Addr(), prefix.Bits())
}

// HashIP returns the salted SHA-256 of the anonymized network as
// lowercase hex, or nil when the IP cannot be anonymized. The hash is
// deterministic for a fixed salt and changes only when the client
// moves to a different /24 or /48 network.
func (h *Hasher) HashIP(ipStr string) *string {
	anon := AnonymizeIP(ipStr)
	if anon == "" {
		return nil
	}
	sum := sha256.Sum256([]byte(h.salt + "::" + anon))
	out := hex.EncodeToString(sum[:])
	return &out
}

// Fingerprint combines an IP hash with a lowercased user-agent prefix
// into a stable visitor identifier. Returns nil when both inputs are
// absent; such scans are never counted unique.
func Fingerprint(ipHash *string, userAgent string) *string {
	normalized := userAgent
	if len(normalized) > fingerprintUAPrefix {
		normalized = normalized[:fingerprintUAPrefix]
	}
	normalized = strings.ToLower(normalized)

	hashed := ""
	if ipHash != nil {
		hashed = *ipHash
	}
	if hashed == "" && normalized == "" {
		return nil
	}
	sum := sha256.Sum256([]byte(hashed + "|" + normalized))
	out := hex.EncodeToString(sum[:])
	return &out
}

// ClientIP extracts the originating client IP, honoring the first
// entry of X-Forwarded-For when present.
func ClientIP(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
