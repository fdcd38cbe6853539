package db

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/archivista/archivist/errors"
)

// OpenDB opens the SQLite knowledge base with WAL journaling and foreign
// keys on, creating the parent directory when needed. ":memory:" is
// accepted for tests.
func OpenDB(sqlitePath string) (*gorm.DB, error) {
	if sqlitePath == "" {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "sqlite path is empty")
	}

	if sqlitePath != ":memory:" {
		if dir := filepath.Dir(sqlitePath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.Wrapf(err, "failed to create database directory %s", dir)
			}
		}
	}

	db, err := gorm.Open(
		sqlite.Open(
			fmt.Sprintf("file:%s?cache=shared&mode=rwc&_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000", sqlitePath),
		),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite database at %s", sqlitePath)
	}

	return db, nil
}

func CloseDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrapf(err, "failed to get db")
	}
	if err := sqlDB.Close(); err != nil {
		return errors.Wrapf(err, "failed to close db")
	}

	return nil
}
