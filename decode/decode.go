// Package decode turns raw source payloads (files, fetched pages, feeds)
// into plain text for the ingestion funnel. Decoders never interpret the
// text; cleaning and validation happen downstream.
package decode

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/archivista/archivist/errors"
	"github.com/archivista/archivist/internal/stringutils"
)

type Decoder struct {
	logger *slog.Logger
}

func NewDecoder(logger *slog.Logger) *Decoder {
	return &Decoder{logger: logger}
}

var plainExtensions = map[string]struct{}{
	".txt": {}, ".md": {}, ".rst": {}, ".log": {}, ".csv": {},
	".go": {}, ".py": {}, ".js": {}, ".ts": {}, ".java": {}, ".c": {},
	".cpp": {}, ".h": {}, ".rs": {}, ".rb": {}, ".sh": {}, ".sql": {},
	".yaml": {}, ".yml": {}, ".toml": {}, ".ini": {}, ".cfg": {},
}

// Supported reports whether Decode knows the file's extension. Walkers
// skip unsupported entries silently.
func (d *Decoder) Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := plainExtensions[ext]; ok {
		return true
	}
	switch ext {
	case ".pdf", ".html", ".htm", ".json", ".docx",
		".png", ".jpg", ".jpeg", ".gif", ".xml", ".rss", ".atom":
		return true
	}
	return false
}

// Decode converts the payload to plain text based on the file extension.
// Returns ErrUnsupported for extensions it does not know.
func (d *Decoder) Decode(path string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	if _, ok := plainExtensions[ext]; ok {
		return stringutils.SanitizeText(string(data)), nil
	}

	switch ext {
	case ".pdf":
		return decodePDF(data)
	case ".html", ".htm":
		return HTMLText(data)
	case ".json":
		return decodeJSON(data)
	case ".docx":
		return decodeDOCX(data)
	case ".png", ".jpg", ".jpeg", ".gif":
		return decodeImage(data)
	case ".xml", ".rss", ".atom":
		return decodeFeed(data)
	}

	d.logger.Debug("no decoder for extension, payload skipped", "path", path, "ext", ext)

	return "", errors.Wrapf(errors.ErrUnsupported, "no decoder for %s", ext)
}
