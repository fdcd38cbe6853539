package knowledge

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

// biasThreshold is the per-document repetition count above which a term
// is flagged by the audit.
const biasThreshold = 100

// minTermLength filters noise words out of the vocabulary.
const minTermLength = 4

// ExtractTerms tokenizes a normalized text into lowercase vocabulary
// terms with their in-document counts. Terms shorter than four runes
// are dropped.
func ExtractTerms(text string) map[string]int {
	terms := make(map[string]int)

	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, word := range words {
		if utf8.RuneCountInString(word) < minTermLength {
			continue
		}
		terms[strings.ToLower(word)]++
	}

	return terms
}

// AuditTermBias flags terms that dominate a single document. The audit
// is informational only and never blocks ingestion.
func AuditTermBias(logger *slog.Logger, source string, terms map[string]int) {
	for term, count := range terms {
		if count > biasThreshold {
			logger.Warn("term repetition exceeds bias threshold",
				"term", term,
				"count", count,
				"source", source,
			)
		}
	}
}
