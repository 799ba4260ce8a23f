// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package identity

import (
	"strings"

	"github.com/mssola/user_agent"

	"github.com/soerfi/qr-wizard/internal/models"
)

// botKeywords are matched as substrings against the lowercased user
// agent. They catch crawlers that the structural parser misses, such
// as link-preview fetchers and uptime monitors.
var botKeywords = []string{
	"bot",
	"spider",
	"crawler",
	"preview",
	"headless",
	"monitor",
	"httpclient",
}

// tabletMarkers identify tablets, which otherwise register as mobile.
var tabletMarkers = []string{
	"ipad",
	"tablet",
	"kindle",
	"silk",
	"playbook",
}

// desktopPlatforms are user-agent platform tokens for desktop systems.
var desktopPlatforms = map[string]bool{
	"Windows":   true,
	"Macintosh": true,
	"X11":       true,
	"Linux":     true,
}

// DeviceInfo is the classification of one user agent.
type DeviceInfo struct {
	OS         *string
	Browser    *string
	DeviceType string
}

// IsBot reports whether the user agent belongs to an automated client.
// An empty user agent is not considered a bot; it simply carries no
// signal either way.
func IsBot(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	lower := strings.ToLower(userAgent)
	for _, kw := range botKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return user_agent.New(userAgent).Bot()
}

// ParseDevice extracts OS, browser and device type from a user agent.
// An empty user agent yields nil OS/browser and device type "unknown".
func ParseDevice(userAgent string) DeviceInfo {
	if userAgent == "" {
		return DeviceInfo{DeviceType: models.DeviceUnknown}
	}

	ua := user_agent.New(userAgent)
	lower := strings.ToLower(userAgent)

	var deviceType string
	switch {
	case containsAny(lower, tabletMarkers):
		deviceType = models.DeviceTablet
	case ua.Mobile():
		deviceType = models.DeviceMobile
	case ua.Bot():
		deviceType = models.DeviceBot
	case desktopPlatforms[ua.Platform()] || desktopPlatforms[osFamily(ua)]:
		deviceType = models.DeviceDesktop
	default:
		deviceType = models.DeviceOther
	}

	browserName, browserVersion := ua.Browser()
	return DeviceInfo{
		OS:         nonEmpty(strings.TrimSpace(ua.OS())),
		Browser:    nonEmpty(strings.TrimSpace(browserName + " " + browserVersion)),
		DeviceType: deviceType,
	}
}

func osFamily(ua *user_agent.UserAgent) string {
	info := ua.OSInfo()
	return info.Name
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
