package decode

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"

	"github.com/archivista/archivist/errors"
)

// HTMLText renders a page to its visible text: scripts, styles and
// markup stripped, body text only. Exported because the network lane
// decodes fetched pages by content type rather than extension.
func HTMLText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse HTML")
	}

	doc.Find("script, style, noscript").Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		return doc.Text(), nil
	}
	return body.Text(), nil
}
