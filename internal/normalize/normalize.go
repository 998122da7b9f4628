// Package normalize folds free-text fields before storage: names and
// descriptions are compared and deduplicated accent- and case-insensitively.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Text trims, lower-cases and strips diacritics from s.
// "  Café com Leite " becomes "cafe com leite".
func Text(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}

	// Decompose, drop combining marks, recompose. The chain is stateful, so
	// build it per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	return strings.ToLower(stripped)
}

// TextPtr normalizes an optional field, mapping blank values to nil.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	n := Text(*s)
	if n == "" {
		return nil
	}
	return &n
}
