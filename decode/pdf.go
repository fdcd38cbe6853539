package decode

import (
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/archivista/archivist/errors"
)

func decodePDF(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", errors.Wrapf(err, "failed to open PDF")
	}
	defer doc.Close()

	var pages []string
	for pageNum := 0; pageNum < doc.NumPage(); pageNum++ {
		text, err := doc.Text(pageNum)
		if err != nil {
			return "", errors.Wrapf(err, "failed to extract text from page %d", pageNum+1)
		}
		pages = append(pages, text)
	}

	return strings.Join(pages, "\n"), nil
}
