package decode

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/archivista/archivist/errors"
)

// decodeDOCX extracts paragraph text from the main document part of a
// DOCX archive (a zip of XML). Only w:t runs are collected; a paragraph
// close becomes a newline.
func decodeDOCX(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.Wrapf(err, "failed to open DOCX archive")
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", errors.Wrapf(err, "failed to open document part")
		}
		defer rc.Close()

		return extractDocumentText(rc)
	}

	return "", errors.New("DOCX archive has no word/document.xml")
}

func extractDocumentText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var builder strings.Builder
	inRun := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		} else if err != nil {
			return "", errors.Wrapf(err, "failed to parse document XML")
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inRun = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRun = false
			case "p":
				builder.WriteByte('\n')
			}
		case xml.CharData:
			if inRun {
				builder.Write(t)
			}
		}
	}

	return builder.String(), nil
}
