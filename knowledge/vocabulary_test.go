package knowledge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/archivista/archivist/knowledge"
)

func TestExtractTerms(t *testing.T) {
	terms := knowledge.ExtractTerms("The Archive keeps archive entries, and the archive grows.")

	assert.Equal(t, 3, terms["archive"])
	assert.Equal(t, 1, terms["keeps"])
	assert.Equal(t, 1, terms["entries"])

	// Short words never enter the vocabulary.
	_, ok := terms["the"]
	assert.False(t, ok)
	_, ok = terms["and"]
	assert.False(t, ok)
}

func TestExtractTerms_Unicode(t *testing.T) {
	terms := knowledge.ExtractTerms("привет мир привет")

	assert.Equal(t, 2, terms["привет"])
	// "мир" is three runes, below the term length floor.
	_, ok := terms["мир"]
	assert.False(t, ok)
}
