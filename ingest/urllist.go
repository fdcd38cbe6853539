package ingest

import (
	"path"
	"strings"
)

// Link is one entry of an operator-maintained URL list file.
type Link struct {
	Title string
	URL   string
}

// ParseURLList reads the url.txt format, one link per line. A line may
// be a bulleted bold-title entry ("* **Title:** URL"), a plain
// "Title: URL", or a bare URL. Lines without a URL are skipped.
func ParseURLList(text string) []Link {
	var links []Link

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "*- \t")

		idx := strings.Index(line, "http://")
		if idx < 0 {
			idx = strings.Index(line, "https://")
		}
		if idx < 0 {
			// Scheme-less lines still count when they look like a host.
			idx = strings.Index(line, "www.")
		}
		if idx < 0 {
			continue
		}

		rawURL, _, _ := strings.Cut(line[idx:], " ")
		rawURL = strings.TrimRight(rawURL, ">)],;")
		if !strings.HasPrefix(rawURL, "http") {
			rawURL = "https://" + rawURL
		}

		title := strings.TrimSpace(line[:idx])
		title = strings.Trim(title, "*")
		title = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(title), ":"))
		title = strings.Trim(title, "*")
		if title == "" {
			title = path.Base(rawURL)
		}

		links = append(links, Link{Title: title, URL: rawURL})
	}

	return links
}
