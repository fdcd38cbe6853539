package msgutils

import "strings"

// ExtractURLs pulls http(s) links out of free-form chat text. Links are
// whitespace-delimited words, possibly wrapped in the punctuation chat
// clients add around pasted URLs.
func ExtractURLs(msg string) []string {
	var urls []string
	for _, word := range strings.Fields(msg) {
		word = strings.Trim(word, "<>()[]{},;\"'")
		if strings.HasPrefix(word, "http://") || strings.HasPrefix(word, "https://") {
			urls = append(urls, word)
		}
	}
	return urls
}
