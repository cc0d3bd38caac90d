// Package stringnorm provides string normalization and fuzzy relation
// helpers; the identify stage uses its title cleaning (CleanTitle).
//
// Ported from the teacher's fuzzy.go (stringNorm/stringRel).
package stringnorm

import (
	"regexp"
	"strings"

	"github.com/jhprks/damerau"
)

var reNorm = regexp.MustCompile(`\b0+|[^\pL\pN]`)

// Normalize strips punctuation and padding zeros, lowercasing the result so
// that string relations are more meaningful across sources.
func Normalize(s string) string {
	return strings.ToLower(reNorm.ReplaceAllString(s, ""))
}

// Relation returns the Damerau-Levenshtein distance between a and b,
// normalized by the length of the longer string, so that two identical
// strings return 1 and two completely unrelated strings return 0.
func Relation(a, b string) float64 {
	max := len([]rune(a))
	if bl := len([]rune(b)); bl > max {
		max = bl
	} else if max == 0 {
		return 1
	}

	distance := damerau.DamerauLevenshteinDistance(a, b)
	return 1 - float64(distance)/float64(max)
}

// ContainsFold reports whether needle appears as a case-insensitive
// substring of haystack.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
