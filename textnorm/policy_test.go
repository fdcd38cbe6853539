package textnorm

import (
	"testing"

	"github.com/abadojack/whatlanggo"
	"github.com/stretchr/testify/assert"

	"github.com/archivista/archivist/config"
	"github.com/archivista/archivist/internal/mylog"
)

func stubValidator(failClosed bool, info whatlanggo.Info) *Validator {
	rules := config.DefaultRules()
	rules.FailClosed = failClosed
	v := NewValidator(rules, mylog.NewLogger("error", "default"))
	v.detect = func(string) whatlanggo.Info { return info }
	return v
}

func TestValid_UndetectableLanguageRejected(t *testing.T) {
	v := stubValidator(false, whatlanggo.Info{Lang: -1})

	// Undetectable language is invalid regardless of policy.
	assert.False(t, v.Valid("long enough text that the detector cannot place"))
}

func TestValid_UnreliableDetectionFollowsPolicy(t *testing.T) {
	unreliable := whatlanggo.Info{Lang: whatlanggo.Eng, Confidence: 0}

	open := stubValidator(false, unreliable)
	closed := stubValidator(true, unreliable)

	text := "ambiguous text the detector is not confident about"
	assert.True(t, open.Valid(text), "fail-open keeps unreliable text")
	assert.False(t, closed.Valid(text), "fail-closed rejects unreliable text")
}

func TestValid_ReliableDetectionAccepted(t *testing.T) {
	reliable := whatlanggo.Info{Lang: whatlanggo.Eng, Confidence: 1}
	v := stubValidator(true, reliable)

	assert.True(t, v.Valid("a confidently detected english sentence"))
}
