package db

import (
	"gorm.io/gorm"

	"github.com/archivista/archivist/entity"
	"github.com/archivista/archivist/errors"
)

func AutoMigrate(db *gorm.DB) error {
	return errors.WithStack(db.AutoMigrate(
		&entity.KnowledgeRecord{},
		&entity.QAPair{},
		&entity.SummaryCacheEntry{},
		&entity.UserContextEntry{},
		&entity.UserProfile{},
		&entity.Feedback{},
		&entity.VocabularyTerm{},
		&entity.Synonym{},
	))
}

func DropAll(db *gorm.DB) error {
	return errors.WithStack(db.Migrator().DropTable(
		&entity.Synonym{},
		&entity.VocabularyTerm{},
		&entity.Feedback{},
		&entity.UserProfile{},
		&entity.UserContextEntry{},
		&entity.SummaryCacheEntry{},
		&entity.QAPair{},
		&entity.KnowledgeRecord{},
	))
}

// CreateSearchIndex creates the FTS5 virtual tables that mirror the
// knowledge and QA tables, plus the triggers that keep them in sync.
// Building requires the sqlite_fts5 tag (see README). Separate from
// AutoMigrate so tests that never search can skip the FTS requirement.
func CreateSearchIndex(db *gorm.DB) error {
	statements := []string{
		`CREATE VIRTUAL TABLE IF NOT EXISTS knowledge_fts USING fts5(
			content,
			content='knowledge_records',
			content_rowid='id'
		)`,
		`CREATE TRIGGER IF NOT EXISTS knowledge_records_ai
			AFTER INSERT ON knowledge_records BEGIN
			INSERT INTO knowledge_fts(rowid, content) VALUES (new.id, new.content);
		END`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS qa_fts USING fts5(
			question,
			answer,
			content='qa_pairs',
			content_rowid='id'
		)`,
		`CREATE TRIGGER IF NOT EXISTS qa_pairs_ai
			AFTER INSERT ON qa_pairs BEGIN
			INSERT INTO qa_fts(rowid, question, answer) VALUES (new.id, new.question, new.answer);
		END`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return errors.Wrapf(err, "failed to create search index")
		}
	}

	return nil
}
