// Package slug derives URL-safe identifiers from display names.
//
// Unicode letters and digits are preserved, so "Борщ зелёный" becomes
// "борщ-зелёный" rather than a transliterated ASCII form.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Make returns the slug for name: NFKC-normalized and lowercased, with every
// character that is not a letter, digit, underscore, hyphen or whitespace
// removed, runs of hyphens/whitespace collapsed into a single hyphen and
// leading/trailing hyphens and underscores trimmed.
func Make(name string) string {
	normalized := strings.ToLower(norm.NFKC.String(name))

	var b strings.Builder
	b.Grow(len(normalized))
	separator := false
	for _, r := range normalized {
		switch {
		case isWordRune(r):
			if separator {
				b.WriteByte('-')
				separator = false
			}
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			separator = true
		}
	}

	return strings.Trim(b.String(), "-_")
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
