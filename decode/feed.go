package decode

import (
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/archivista/archivist/errors"
)

// decodeFeed flattens an RSS/Atom document into readable text: feed
// title and description, then each item's title and summary.
func decodeFeed(data []byte) (string, error) {
	feed, err := gofeed.NewParser().ParseString(string(data))
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse feed")
	}

	var parts []string
	if feed.Title != "" {
		parts = append(parts, feed.Title)
	}
	if feed.Description != "" {
		parts = append(parts, feed.Description)
	}

	for _, item := range feed.Items {
		if item.Title != "" {
			parts = append(parts, item.Title)
		}
		if item.Description != "" {
			parts = append(parts, item.Description)
		} else if item.Content != "" {
			parts = append(parts, item.Content)
		}
	}

	return strings.Join(parts, "\n"), nil
}
