package chat_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivista/archivist/chat"
)

func TestLoadSettings_AbsentFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	settings, err := chat.LoadSettings(path)
	require.NoError(t, err)

	assert.FileExists(t, path, "defaults are re-saved so the operator can edit them")
	assert.Equal(t, 512, settings.MemoryCeilingMB())
	assert.True(t, settings.Allowed("any-guild", "any-channel"))
}

func TestLoadSettings_CorruptFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	settings, err := chat.LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 512, settings.MemoryCeilingMB())

	// The corrupt document was replaced with a valid one.
	reloaded, err := chat.LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 512, reloaded.MemoryCeilingMB())
}

func TestSettings_AllowList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	settings, err := chat.LoadSettings(path)
	require.NoError(t, err)

	require.NoError(t, settings.AllowChannel("g1", "c1"))

	assert.True(t, settings.Allowed("g1", "c1"))
	assert.False(t, settings.Allowed("g1", "c2"), "a guild with an allow-list blocks unlisted channels")
	assert.True(t, settings.Allowed("g2", "c2"), "a guild without an entry allows everything")

	// The allow-list survives a reload.
	reloaded, err := chat.LoadSettings(path)
	require.NoError(t, err)
	assert.True(t, reloaded.Allowed("g1", "c1"))
	assert.False(t, reloaded.Allowed("g1", "c2"))
}
