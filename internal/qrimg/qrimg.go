// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

// Package qrimg renders QR code images for tracking URLs. Codes are
// generated at error-correction level H so printed labels tolerate
// logo overlays and physical wear.
package qrimg

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/nfnt/resize"
	qrcode "github.com/skip2/go-qrcode"
)

// Pixel size bounds for rendered images.
const (
	DefaultSize = 400
	MinSize     = 64
	MaxSize     = 4096
)

// Format identifies an image output format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ErrUnsupportedFormat is returned for formats other than png and svg.
var ErrUnsupportedFormat = fmt.Errorf("format must be png or svg")

// ParseFormat normalizes a format string, defaulting empty to png.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "svg":
		return FormatSVG, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Ext returns the file extension for the format.
func (f Format) Ext() string {
	return string(f)
}

// ClampSize forces a pixel size into [MinSize, MaxSize], mapping
// non-positive values to the default.
func ClampSize(size int) int {
	if size <= 0 {
		return DefaultSize
	}
	if size < MinSize {
		return MinSize
	}
	if size > MaxSize {
		return MaxSize
	}
	return size
}

// Render encodes data as a QR image in the given format at size
// pixels. The size is clamped via ClampSize.
func Render(data string, format Format, size int) ([]byte, error) {
	size = ClampSize(size)

	code, err := qrcode.New(data, qrcode.Highest)
	if err != nil {
		return nil, fmt.Errorf("encoding qr data: %w", err)
	}
	code.DisableBorder = true

	switch format {
	case FormatPNG:
		return renderPNG(code, size)
	case FormatSVG:
		return renderSVG(code, size), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// renderPNG draws the module matrix at one pixel per module, then
// upscales with nearest-neighbor so edges stay perfectly sharp.
func renderPNG(code *qrcode.QRCode, size int) ([]byte, error) {
	modules := code.Bitmap()
	n := len(modules)

	img := image.NewGray(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if modules[y][x] {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	scaled := resize.Resize(uint(size), uint(size), img, resize.NearestNeighbor)

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// renderSVG emits the module matrix as a single path over a white
// background. The viewBox is in module units so the image scales
// without rounding artifacts.
func renderSVG(code *qrcode.QRCode, size int) []byte {
	modules := code.Bitmap()
	n := len(modules)

	var path strings.Builder
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if modules[y][x] {
				fmt.Fprintf(&path, "M%d %dh1v1h-1z", x, y)
			}
		}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf,
		`<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">`,
		size, size, n, n)
	fmt.Fprintf(&buf, `<rect width="%d" height="%d" fill="white"/>`, n, n)
	fmt.Fprintf(&buf, `<path d="%s" fill="black"/>`, path.String())
	buf.WriteString(`</svg>`)
	return buf.Bytes()
}

// SafeFilename builds a download filename from a slug and display
// name. Characters outside [a-zA-Z0-9 -_] are stripped from the name
// and spaces become underscores: "QR_{slug}_{name}.{ext}", or
// "QR_{slug}.{ext}" when no usable name remains.
func SafeFilename(slug, name string, format Format) string {
	safe := sanitizeName(name)
	safe = strings.ReplaceAll(safe, " ", "_")
	if safe == "" {
		return fmt.Sprintf("QR_%s.%s", slug, format.Ext())
	}
	return fmt.Sprintf("QR_%s_%s.%s", slug, safe, format.Ext())
}

// ZipEntryName builds the per-link filename used inside bulk export
// archives: "{slug}_{name}.{ext}" with the same character stripping
// but spaces preserved.
func ZipEntryName(slug, name string, format Format) string {
	safe := sanitizeName(name)
	if safe == "" {
		return fmt.Sprintf("%s.%s", slug, format.Ext())
	}
	return fmt.Sprintf("%s_%s.%s", slug, safe, format.Ext())
}

func sanitizeName(name string) string {
	var b strings.Builder
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteRune(c)
		case c == ' ' || c == '-' || c == '_':
			b.WriteRune(c)
		}
	}
	return strings.TrimSpace(b.String())
}
