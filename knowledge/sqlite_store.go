package knowledge

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/archivista/archivist/entity"
	"github.com/archivista/archivist/errors"
	"github.com/archivista/archivist/internal/db"
)

// SqliteStore implements Store on the shared gorm database, using FTS5
// virtual tables for the full-text queries.
type SqliteStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

var _ Store = (*SqliteStore)(nil)

// NewSqliteStore migrates the schema (including the search index) and
// returns a ready store.
func NewSqliteStore(gdb *gorm.DB, logger *slog.Logger) (*SqliteStore, error) {
	if err := db.AutoMigrate(gdb); err != nil {
		return nil, errors.Wrapf(err, "failed to migrate knowledge schema")
	}
	if err := db.CreateSearchIndex(gdb); err != nil {
		return nil, err
	}

	return &SqliteStore{db: gdb, logger: logger}, nil
}

func (s *SqliteStore) IngestDocument(ctx context.Context, doc *Document) error {
	if doc == nil || (doc.Content == "" && len(doc.Pairs) == 0) {
		return errors.Wrapf(errors.ErrInvalidParams, "empty document")
	}

	now := time.Now()

	return errors.WithStack(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Content may be empty for a tagged transcript whose full text
		// did not survive validation; the pairs still land.
		if doc.Content != "" {
			record := entity.KnowledgeRecord{
				Content:   doc.Content,
				Source:    doc.Source,
				CreatedAt: now,
			}
			if err := tx.Create(&record).Error; err != nil {
				return errors.Wrapf(err, "failed to insert knowledge record")
			}
		}

		if len(doc.Pairs) > 0 {
			pairs := make([]entity.QAPair, len(doc.Pairs))
			copy(pairs, doc.Pairs)
			for i := range pairs {
				pairs[i].ID = 0
				pairs[i].CreatedAt = now
				if pairs[i].Source == "" {
					pairs[i].Source = doc.Source
				}
			}
			if err := tx.CreateInBatches(pairs, 100).Error; err != nil {
				return errors.Wrapf(err, "failed to insert qa pairs")
			}
		}

		if len(doc.Terms) > 0 {
			if err := upsertVocabulary(tx, doc.Terms, now); err != nil {
				return err
			}
		}

		return nil
	}))
}

func upsertVocabulary(tx *gorm.DB, terms map[string]int, now time.Time) error {
	rows := make([]entity.VocabularyTerm, 0, len(terms))
	for term, count := range terms {
		rows = append(rows, entity.VocabularyTerm{
			Term:      term,
			Frequency: int64(count),
			LastSeen:  now,
		})
	}

	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "term"}},
		DoUpdates: clause.Assignments(map[string]any{
			"frequency": gorm.Expr("vocabulary_terms.frequency + excluded.frequency"),
			"last_seen": gorm.Expr("excluded.last_seen"),
		}),
	}).CreateInBatches(rows, 200).Error

	return errors.Wrapf(err, "failed to upsert vocabulary")
}

func (s *SqliteStore) SearchRecords(ctx context.Context, terms []string, limit int) ([]entity.KnowledgeRecord, error) {
	expr := matchExpression(terms)
	if expr == "" {
		return nil, nil
	}

	var records []entity.KnowledgeRecord
	err := s.db.WithContext(ctx).Raw(`
		SELECT k.* FROM knowledge_records k
		JOIN knowledge_fts ON knowledge_fts.rowid = k.id
		WHERE knowledge_fts MATCH ?
		ORDER BY k.id ASC
		LIMIT ?`, expr, limit).Scan(&records).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failed to search knowledge records")
	}

	return records, nil
}

func (s *SqliteStore) SearchQAPairs(ctx context.Context, terms []string, limit int) ([]entity.QAPair, error) {
	expr := matchExpression(terms)
	if expr == "" {
		return nil, nil
	}

	var pairs []entity.QAPair
	err := s.db.WithContext(ctx).Raw(`
		SELECT q.* FROM qa_pairs q
		JOIN qa_fts ON qa_fts.rowid = q.id
		WHERE qa_fts MATCH ?
		ORDER BY q.id ASC
		LIMIT ?`, expr, limit).Scan(&pairs).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failed to search qa pairs")
	}

	return pairs, nil
}

func (s *SqliteStore) TopRatedQA(ctx context.Context, terms []string) (*entity.QAPair, error) {
	expr := matchExpression(terms)
	if expr == "" {
		return nil, nil
	}

	var pairs []entity.QAPair
	err := s.db.WithContext(ctx).Raw(`
		SELECT q.* FROM qa_pairs q
		JOIN qa_fts ON qa_fts.rowid = q.id
		WHERE qa_fts MATCH ?
		ORDER BY q.rating DESC, q.id ASC
		LIMIT 1`, expr).Scan(&pairs).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failed to search top rated qa pair")
	}
	if len(pairs) == 0 {
		return nil, nil
	}

	return &pairs[0], nil
}

func (s *SqliteStore) Synonyms(ctx context.Context, word string) ([]string, error) {
	var synonyms []string
	err := s.db.WithContext(ctx).
		Model(&entity.Synonym{}).
		Where("word = ? COLLATE NOCASE", word).
		Pluck("synonym", &synonyms).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failed to look up synonyms for %q", word)
	}

	return synonyms, nil
}

func (s *SqliteStore) CachedSummary(ctx context.Context, input string) (string, bool, error) {
	var entry entity.SummaryCacheEntry
	err := s.db.WithContext(ctx).First(&entry, "input = ?", input).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	} else if err != nil {
		return "", false, errors.Wrapf(err, "failed to read summary cache")
	}

	return entry.Output, true, nil
}

func (s *SqliteStore) PutSummary(ctx context.Context, input, output string) error {
	entry := entity.SummaryCacheEntry{
		Input:     input,
		Output:    output,
		CreatedAt: time.Now(),
	}

	// The unique key makes duplicate concurrent writes idempotent.
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "input"}},
		DoNothing: true,
	}).Create(&entry).Error

	return errors.Wrapf(err, "failed to write summary cache")
}

func (s *SqliteStore) AddFeedback(ctx context.Context, feedback *entity.Feedback) error {
	if feedback.Rating < 1 || feedback.Rating > 5 {
		return errors.Wrapf(errors.ErrInvalidParams, "rating %d out of range", feedback.Rating)
	}
	if feedback.Timestamp.IsZero() {
		feedback.Timestamp = time.Now()
	}

	return errors.Wrapf(
		s.db.WithContext(ctx).Create(feedback).Error,
		"failed to append feedback",
	)
}

// DB exposes the underlying handle for migrations and test fixtures.
func (s *SqliteStore) DB() *gorm.DB {
	return s.db
}

func (s *SqliteStore) Close() error {
	return db.CloseDB(s.db)
}

// matchExpression joins terms into an FTS5 OR query, quoting each term
// so punctuation cannot change the query structure.
func matchExpression(terms []string) string {
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		quoted = append(quoted, `"`+strings.ReplaceAll(term, `"`, `""`)+`"`)
	}

	return strings.Join(quoted, " OR ")
}
