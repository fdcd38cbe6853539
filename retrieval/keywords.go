package retrieval

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minKeywordLength drops stop-word noise without a stop-word list.
const minKeywordLength = 4

// Keywords extracts the salient lowercase words of a text, deduplicated
// in first-seen order. Words shorter than four runes are dropped.
func Keywords(text string) []string {
	var keywords []string
	seen := make(map[string]struct{})

	for _, word := range splitWords(text) {
		if utf8.RuneCountInString(word) < minKeywordLength {
			continue
		}
		word = strings.ToLower(word)
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}

	return keywords
}

func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// wordSet lowercases every word of a text into a membership set, for
// whole-word overlap checks.
func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range splitWords(text) {
		set[strings.ToLower(word)] = struct{}{}
	}

	return set
}
