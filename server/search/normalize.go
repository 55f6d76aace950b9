// Copyright 2026 Aoi Tanaka.
// All rights reserved.

// Package search normalizes free-text queries and matches them against the catalog.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// Hiragana block covered by the katakana shift (U+3041 "ぁ" through U+3096 "ゖ").
const (
	hiraganaFirst = 0x3041
	hiraganaLast  = 0x3096
	kataShift     = 0x60
)

// Runes removed from normalized text. Full-width variants are folded to their
// half-width forms before this set is applied, so only the canonical forms
// need to be listed.
var strippedRunes = map[rune]bool{
	'\'': true, '’': true, '‘': true,
	'"': true, '“': true, '”': true,
	'.': true, ',': true, '!': true, '&': true,
	'(': true, ')': true,
	'ー': true,
}

// Normalize canonicalizes s into a comparable search key.
//
// Width is folded first (full-width ASCII becomes half-width, half-width
// katakana becomes full-width), hiragana is shifted to katakana, everything is
// lowercased, and whitespace plus a fixed punctuation set is stripped.
//
// The result is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = width.Fold.String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= hiraganaFirst && r <= hiraganaLast {
			r += kataShift
		}
		r = unicode.ToLower(r)
		if unicode.IsSpace(r) || strippedRunes[r] {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
