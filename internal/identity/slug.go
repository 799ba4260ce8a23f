// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

// Package identity implements visitor identity and privacy primitives:
// slug minting, IP anonymization and salted hashing, visitor
// fingerprinting, and user-agent classification.
package identity

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// SlugAlphabet excludes the visually ambiguous characters 0, 1, I, O
// and l so slugs survive hand transcription from printed material.
const SlugAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// SlugLength is the number of characters in a minted slug.
const SlugLength = 7

// maxMintAttempts bounds collision retries. At 58^7 (~2.2e12) possible
// slugs, hitting this limit means the store is effectively full or the
// exists check is broken.
const maxMintAttempts = 100

// MintSlug generates a random slug and retries until exists reports it
// unused. Collisions are resolved here so callers never see them.
func MintSlug(exists func(slug string) (bool, error)) (string, error) {
	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		slug, err := randomSlug(SlugLength)
		if err != nil {
			return "", fmt.Errorf("generating slug: %w", err)
		}
		taken, err := exists(slug)
		if err != nil {
			return "", fmt.Errorf("checking slug uniqueness: %w", err)
		}
		if !taken {
			return slug, nil
		}
	}
	return "", fmt.Errorf("no free slug after %d attempts", maxMintAttempts)
}

// randomSlug draws length characters from SlugAlphabet using rejection
// sampling so every character is equally likely.
func randomSlug(length int) (string, error) {
	// 232 is the largest multiple of len(SlugAlphabet) below 256.
	const limit = byte(232)

	var b strings.Builder
	b.Grow(length)
	buf := make([]byte, 1)
	for b.Len() < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		if buf[0] >= limit {
			continue
		}
		b.WriteByte(SlugAlphabet[int(buf[0])%len(SlugAlphabet)])
	}
	return b.String(), nil
}

// ValidSlug reports whether s could have been minted by this package.
func ValidSlug(s string) bool {
	if len(s) != SlugLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(SlugAlphabet, rune(s[i])) {
			return false
		}
	}
	return true
}
