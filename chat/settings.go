// Package chat is the platform-facing core: it decides what to do with
// an incoming message and what to answer, while the surrounding adapter
// owns the event loop and the actual network I/O.
package chat

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/samber/lo"

	"github.com/archivista/archivist/errors"
)

type (
	// Settings is the persisted runtime document: which channels each
	// guild allows the bot to learn from and answer in, plus the memory
	// ceiling handed to the surrounding application.
	Settings struct {
		// AllowedChannels maps guild id to the channel ids the bot may
		// use. An absent guild entry means every channel is allowed.
		AllowedChannels map[string][]string `json:"allowed_channels"`

		// MemoryCeilingMB bounds the surrounding application's in-memory
		// model state.
		MemoryCeilingMB int `json:"memory_ceiling_mb"`
	}

	// SettingsFile loads and persists Settings at a fixed path.
	SettingsFile struct {
		path string

		mu       sync.RWMutex
		settings Settings
	}
)

func defaultSettings() Settings {
	return Settings{
		AllowedChannels: map[string][]string{},
		MemoryCeilingMB: 512,
	}
}

// LoadSettings reads the settings document. An absent or corrupt file
// yields the defaults, re-saved immediately so the operator has a valid
// document to edit.
func LoadSettings(path string) (*SettingsFile, error) {
	f := &SettingsFile{path: path, settings: defaultSettings()}

	data, err := os.ReadFile(path)
	if err == nil {
		if jsonErr := json.Unmarshal(data, &f.settings); jsonErr == nil {
			return f, nil
		}
		f.settings = defaultSettings()
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "failed to read settings file %s", path)
	}

	if err := f.save(); err != nil {
		return nil, err
	}

	return f, nil
}

// Allowed reports whether a guild permits the bot in a channel.
func (f *SettingsFile) Allowed(guildID, channelID string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	channels, ok := f.settings.AllowedChannels[guildID]
	if !ok {
		return true
	}

	return lo.Contains(channels, channelID)
}

// AllowChannel adds a channel to a guild's allow-list and persists.
func (f *SettingsFile) AllowChannel(guildID, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	channels := f.settings.AllowedChannels[guildID]
	if lo.Contains(channels, channelID) {
		return nil
	}
	f.settings.AllowedChannels[guildID] = append(channels, channelID)

	return f.save()
}

func (f *SettingsFile) MemoryCeilingMB() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.settings.MemoryCeilingMB
}

// save writes the document; callers hold the lock where it matters.
func (f *SettingsFile) save() error {
	if dir := filepath.Dir(f.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create settings dir")
		}
	}

	data, err := json.MarshalIndent(f.settings, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "failed to encode settings")
	}

	return errors.Wrapf(os.WriteFile(f.path, data, 0o644), "failed to write settings file %s", f.path)
}
