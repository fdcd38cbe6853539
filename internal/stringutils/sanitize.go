package stringutils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeText drops NULL bytes and control characters other than common
// whitespace. Decoded file bytes pass through here before normalization.
func SanitizeText(s string) string {
	if utf8.ValidString(s) && !hasControlChars(s) {
		return s
	}

	var builder strings.Builder
	builder.Grow(len(s))

	for _, r := range s {
		if r == utf8.RuneError {
			continue
		}
		if isControl(r) {
			continue
		}
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

func isControl(r rune) bool {
	if r == 0 || r == 127 {
		return true
	}
	if r < 32 && r != '\t' && r != '\n' && r != '\r' {
		return true
	}
	return r >= 128 && r <= 159
}

func hasControlChars(s string) bool {
	for _, r := range s {
		if isControl(r) {
			return true
		}
	}
	return false
}
