// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives and checks the URL identifiers used for articles.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// apostrophes are dropped so "Kenya's" becomes "kenyas", not "kenya-s".
	apostrophes = strings.NewReplacer("'", "", "’", "", "‘", "")
	// nonAlphanumeric matches every run of characters outside [a-z0-9].
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	// valid is the shape every stored slug must have.
	valid = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Generate creates a URL-friendly slug from the given title.
// Example: "Kenya's Coffee: AA Grade!" → "kenyas-coffee-aa-grade"
//
// Accented letters are folded to their base letter before the non
// [a-z0-9] runs are collapsed, so "Café Story" gives "cafe-story". A plain
// lower-case-and-collapse pass would drop the letter and give
// "caf-story"; slugs stored by such a generator still load, since
// articles are looked up by the exact stored slug.
func Generate(s string) string {
	result := strings.ToLower(foldAccents(s))
	result = apostrophes.Replace(result)
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Valid reports whether s is already in canonical slug form: lower-case
// ASCII letters and digits separated by single hyphens.
func Valid(s string) bool {
	return valid.MatchString(s)
}

// foldAccents decomposes accented letters and drops the combining marks,
// so "Café" slugs to "cafe" instead of "caf".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
