package knowledge

import (
	"strings"
	"unicode"

	"github.com/archivista/archivist/entity"
	"github.com/archivista/archivist/textnorm"
)

// ExtractQAPairs scans consecutive sentence pairs of a normalized text:
// when sentence i ends with a question mark and both sentences pass
// validation independently, the pair is emitted with rating zero.
//
// This is a cheap heuristic, not a semantic classifier. Rhetorical
// questions and non-adjacent answers produce false positives.
func ExtractQAPairs(text, source string, valid func(string) bool) []entity.QAPair {
	sentences := SplitSentences(text)

	var pairs []entity.QAPair
	for i := 0; i+1 < len(sentences); i++ {
		question := sentences[i]
		answer := sentences[i+1]

		if !strings.HasSuffix(question, "?") {
			continue
		}
		if !valid(question) || !valid(answer) {
			continue
		}

		pairs = append(pairs, entity.QAPair{
			Question: question,
			Answer:   answer,
			Source:   source,
		})
	}

	return pairs
}

// SplitSentences splits on sentence terminators, keeping the terminator
// with its sentence.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Terminator runs ("?!", "...") stay with one sentence.
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		flush()
	}
	flush()

	return sentences
}

var (
	questionTags = []string{"Q:", "В:"}
	answerTags   = []string{"A:", "О:"}
)

// ParseTaggedQA reads the explicit transcript format: lines tagged
// "Q:"/"A:" (or the Cyrillic "В:"/"О:"), each question paired with the
// next answer line. Untagged and unmatched lines are discarded. Unlike
// the sentence heuristic, tagged payloads are taken verbatim: the file
// author already curated them.
func ParseTaggedQA(text, source string) []entity.QAPair {
	var pairs []entity.QAPair
	var pending string
	havePending := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		if payload, ok := cutTag(line, questionTags); ok {
			pending = textnorm.Normalize(payload)
			havePending = pending != ""
			continue
		}

		if payload, ok := cutTag(line, answerTags); ok {
			answer := textnorm.Normalize(payload)
			if havePending && answer != "" {
				pairs = append(pairs, entity.QAPair{
					Question: pending,
					Answer:   answer,
					Source:   source,
				})
			}
			havePending = false
		}
	}

	return pairs
}

func cutTag(line string, tags []string) (string, bool) {
	for _, tag := range tags {
		if rest, ok := strings.CutPrefix(line, tag); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}
