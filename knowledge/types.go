package knowledge

import (
	"github.com/archivista/archivist/entity"
)

// Document is one logical ingestion unit: a validated snippet plus
// everything derived from it. All of it commits atomically.
type Document struct {
	Content string
	Source  string
	Pairs   []entity.QAPair
	Terms   map[string]int
}
