package entity

import (
	"time"
)

// VocabularyTerm tracks corpus-wide term frequency.
type VocabularyTerm struct {
	Term      string `gorm:"primaryKey"`
	Frequency int64  `gorm:"not null;default:0"`
	LastSeen  time.Time
}

// Synonym maps a word to one synonym; the pair is unique. The table is
// populated externally and read-only from the core's perspective.
type Synonym struct {
	Word    string `gorm:"primaryKey"`
	Synonym string `gorm:"primaryKey"`
}
