// Copyright (c) 2026 Rootline. All rights reserved.
// Author: pham.ducminh.dev@gmail.com

// Package namekey builds accent-folded sort and search keys for person names.
//
// # Usage
//
// Genealogy records carry names from many scripts and orthographies
// ("Nguyễn", "Müller", "O'Brien"). Name keys normalize them into a stable
// ASCII-lowercase form so list ordering and duplicate-person hints behave the
// same regardless of accents, apostrophes, or spacing.
package namekey

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// For builds the sort key for a person from family and given name,
// family name first. Either part may be empty.
func For(familyName, givenName string) string {
	family := Fold(familyName)
	given := Fold(givenName)
	switch {
	case family == "":
		return given
	case given == "":
		return family
	}
	return family + " " + given
}

// Fold converts an arbitrary Unicode name fragment into a lowercase ASCII key.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 2. Removes combining marks (accents).
// 3. Converts to lowercase.
// 4. Drops everything but letters, digits, and single spaces.
func Fold(s string) string {
	// 1. Normalize and remove accents
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, _ := transform.String(t, s)

	// 2. Lowercase
	result = strings.ToLower(result)

	// 3. Keep letters and digits, map everything else to spaces
	result = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, result)

	// 4. Collapse runs of spaces
	return strings.Join(strings.Fields(result), " ")
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
