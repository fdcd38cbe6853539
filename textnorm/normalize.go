package textnorm

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes raw text: Unicode NFKC, all whitespace runs
// (including newlines and tabs) collapsed to single spaces, trimmed.
// Normalize is idempotent.
func Normalize(raw string) string {
	s := norm.NFKC.String(raw)
	return strings.Join(strings.Fields(s), " ")
}
