package decode

import (
	"bytes"
	"encoding/json"

	"github.com/archivista/archivist/errors"
)

func decodeJSON(data []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return "", errors.Wrapf(err, "failed to parse JSON")
	}
	return buf.String(), nil
}
