// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides slug derivation and validation helpers.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// whitespaceRuns matches runs of ASCII and Unicode spaces, including NBSP and BOM
	whitespaceRuns = regexp.MustCompile(`[\s\p{Z}\x{FEFF}]+`)
	// nonSlugChars matches everything the editor does not keep in a slug
	nonSlugChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
	// slugRegex matches non-alphanumeric characters (except hyphens)
	slugRegex = regexp.MustCompile(`[^a-z0-9-]+`)
	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// DeriveSlug turns a title into a slug the way the editor does while the
// operator types: lowercase, whitespace runs become one hyphen, and any
// character outside [A-Za-z0-9_-] is dropped.
func DeriveSlug(title string) string {
	s := strings.ToLower(title)
	s = whitespaceRuns.ReplaceAllString(s, "-")
	return nonSlugChars.ReplaceAllString(s, "")
}

// IsEditorSlug reports whether s only holds characters DeriveSlug can produce.
func IsEditorSlug(s string) bool {
	return s != "" && !nonSlugChars.MatchString(s)
}

// Slugify converts a string to a URL-friendly slug, transliterating
// non-Latin scripts. The persistence service uses it for fallback slugs.
func Slugify(s string) string {
	// Normalize unicode characters (decompose accents)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)

	result = unidecode.Unidecode(result)
	result = strings.ToLower(result)
	result = whitespaceRuns.ReplaceAllString(result, "-")

	// Remove all non-alphanumeric characters except hyphens
	result = slugRegex.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")

	return strings.Trim(result, "-")
}

// IsValidSlug checks if a string is a valid URL slug: lowercase letters,
// digits and single inner hyphens.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}

	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	return !strings.Contains(s, "--")
}
