package decode

import (
	"bytes"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/archivista/archivist/errors"
)

// decodeImage produces a descriptive caption of format and dimensions.
// Pixel content is out of scope for a text knowledge base.
func decodeImage(data []byte) (string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", errors.Wrapf(err, "failed to read image header")
	}

	return fmt.Sprintf("Image file, format %s, dimensions %dx%d pixels.", format, cfg.Width, cfg.Height), nil
}
