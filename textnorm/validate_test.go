package textnorm_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/archivista/archivist/config"
	"github.com/archivista/archivist/internal/mylog"
	"github.com/archivista/archivist/textnorm"
)

func newTestValidator(t *testing.T, mutate func(*config.Rules)) *textnorm.Validator {
	t.Helper()
	rules := config.DefaultRules()
	if mutate != nil {
		mutate(rules)
	}
	return textnorm.NewValidator(rules, mylog.NewLogger("error", "default"))
}

func TestValid_RejectsShortText(t *testing.T) {
	v := newTestValidator(t, nil)

	// Any text shorter than ten runes is invalid.
	for _, text := range []string{"", "a", "short", "123456789", "ку", "привет!"} {
		assert.False(t, v.Valid(text), "expected %q to be invalid", text)
	}
}

func TestValid_AcceptsOrdinaryText(t *testing.T) {
	v := newTestValidator(t, nil)

	assert.True(t, v.Valid("The quick brown fox jumps over the lazy dog."))
	assert.True(t, v.Valid("Привет! Рад тебя видеть сегодня."))
}

func TestValid_RejectsBlockedTerms(t *testing.T) {
	v := newTestValidator(t, func(r *config.Rules) {
		r.BlockedTerms = []string{"FORBIDDEN"}
	})

	assert.False(t, v.Valid("this sentence contains a forbidden word inside"))
	assert.True(t, v.Valid("this sentence is perfectly acceptable instead"))
}

func TestValid_RejectsLowAllowedRatio(t *testing.T) {
	v := newTestValidator(t, nil)

	// Control characters are outside the allow-set.
	junk := strings.Repeat("\x01\x02\x03\x04", 10) + "hello"
	assert.False(t, v.Valid(junk))
}
