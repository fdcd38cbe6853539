package knowledge

import (
	"context"

	"github.com/archivista/archivist/entity"
)

// Store is the durable, full-text-indexed knowledge base.
type Store interface {
	// IngestDocument commits one logical ingestion unit atomically:
	// the knowledge record, its extracted QA pairs and the vocabulary
	// frequency updates all land in one transaction or not at all.
	IngestDocument(ctx context.Context, doc *Document) error

	// SearchRecords runs an OR full-text query over knowledge records.
	SearchRecords(ctx context.Context, terms []string, limit int) ([]entity.KnowledgeRecord, error)

	// SearchQAPairs runs an OR full-text query over questions and answers.
	SearchQAPairs(ctx context.Context, terms []string, limit int) ([]entity.QAPair, error)

	// TopRatedQA returns the best-rated matching pair; ties on rating
	// break by insertion order. Nil when nothing matches.
	TopRatedQA(ctx context.Context, terms []string) (*entity.QAPair, error)

	// Synonyms returns the configured synonyms of a word.
	Synonyms(ctx context.Context, word string) ([]string, error)

	// CachedSummary looks up a memoized summarizer response.
	CachedSummary(ctx context.Context, input string) (string, bool, error)

	// PutSummary memoizes a summarizer response. Concurrent identical
	// writes are idempotent.
	PutSummary(ctx context.Context, input, output string) error

	// AddFeedback appends one feedback row.
	AddFeedback(ctx context.Context, feedback *entity.Feedback) error

	Close() error
}
