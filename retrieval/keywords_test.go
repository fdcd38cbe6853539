package retrieval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/archivista/archivist/retrieval"
)

func TestKeywords(t *testing.T) {
	keywords := retrieval.Keywords("How does the Reactor cooling loop keep the reactor safe?")

	assert.Equal(t, []string{"does", "reactor", "cooling", "loop", "keep", "safe"}, keywords)
}

func TestKeywords_EmptyAndShort(t *testing.T) {
	assert.Empty(t, retrieval.Keywords(""))
	assert.Empty(t, retrieval.Keywords("a an the of to"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", retrieval.Truncate("short", 10))
	assert.Equal(t, "exact", retrieval.Truncate("exact", 5))
	assert.Equal(t, "long…", retrieval.Truncate("long text", 5))
	assert.Equal(t, "приве…", retrieval.Truncate("приветствие", 6), "truncation counts runes, not bytes")
	assert.Equal(t, "untouched", retrieval.Truncate("untouched", 0))
}
