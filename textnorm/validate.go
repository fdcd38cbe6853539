package textnorm

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"

	"github.com/archivista/archivist/config"
	"github.com/archivista/archivist/internal/stringslices"
)

// Validator decides whether a text is worth storing. Rejection is a
// normal filtering outcome, not an error: Valid never panics and callers
// skip rejected items and continue their batch.
type Validator struct {
	minLength       int
	minAllowedRatio float64
	blockedTerms    []string
	failClosed      bool
	logger          *slog.Logger

	detect func(string) whatlanggo.Info
}

func NewValidator(rules *config.Rules, logger *slog.Logger) *Validator {
	return &Validator{
		minLength:       rules.MinLength,
		minAllowedRatio: rules.MinAllowedRatio,
		blockedTerms:    stringslices.ToLower(rules.BlockedTerms),
		failClosed:      rules.FailClosed,
		logger:          logger,
		detect:          whatlanggo.Detect,
	}
}

// Valid reports whether text passes every gate: minimum length,
// recognized-character ratio, blocked vocabulary, detectable language.
// Text is expected to be normalized already.
func (v *Validator) Valid(text string) bool {
	runes := []rune(text)
	if len(runes) < v.minLength {
		return false
	}

	if allowedRatio(runes) <= v.minAllowedRatio {
		return false
	}

	lower := strings.ToLower(text)
	for _, term := range v.blockedTerms {
		if term != "" && strings.Contains(lower, term) {
			return false
		}
	}

	return v.languageDetectable(text)
}

func (v *Validator) languageDetectable(text string) bool {
	info := v.detect(text)
	if info.Lang == -1 {
		return false
	}
	if !info.IsReliable() {
		// Unreliable detection is the library's "undetermined". The
		// policy is configurable: fail open keeps the text, fail
		// closed rejects it.
		if v.failClosed {
			v.logger.Debug("language detection unreliable, rejecting", "lang", info.Lang.String())
			return false
		}
	}
	return true
}

// allowedRatio is the fraction of runes inside the extended allow-set:
// Unicode letters, numbers, punctuation, symbols and spaces.
func allowedRatio(runes []rune) float64 {
	if len(runes) == 0 {
		return 0
	}

	allowed := 0
	for _, r := range runes {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsPunct(r) ||
			unicode.IsSymbol(r) || unicode.IsSpace(r) {
			allowed++
		}
	}

	return float64(allowed) / float64(len(runes))
}
