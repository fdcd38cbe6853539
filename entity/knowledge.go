package entity

import (
	"time"
)

// KnowledgeRecord is one validated free-text snippet. Records are
// append-only: content is never rewritten after insertion.
type KnowledgeRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Content   string `gorm:"type:text;not null"`
	Source    string `gorm:"index:idx_knowledge_source"`
	CreatedAt time.Time
}

// QAPair is a stored question/answer pair, produced either by the
// adjacent-sentence heuristic, a tagged transcript file or the remote
// summarizer. Rating starts at zero and is only ever moved by feedback
// workflows.
type QAPair struct {
	ID        uint   `gorm:"primaryKey"`
	Question  string `gorm:"type:text;not null"`
	Answer    string `gorm:"type:text;not null"`
	Rating    int    `gorm:"not null;default:0"`
	Source    string `gorm:"index:idx_qa_source"`
	CreatedAt time.Time
}

// SummaryCacheEntry memoizes the remote summarizer keyed by normalized
// input, so identical text is never resubmitted.
type SummaryCacheEntry struct {
	Input     string `gorm:"primaryKey"`
	Output    string `gorm:"type:text;not null"`
	CreatedAt time.Time
}
