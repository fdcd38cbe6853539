package retrieval

// Truncate caps a text at max runes, replacing the tail with an
// ellipsis. Non-positive max disables truncation.
func Truncate(text string, max int) string {
	if max <= 0 {
		return text
	}

	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	if max == 1 {
		return "…"
	}

	return string(runes[:max-1]) + "…"
}
