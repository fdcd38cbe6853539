package memory_test

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/archivista/archivist/entity"
	"github.com/archivista/archivist/errors"
	"github.com/archivista/archivist/internal/db"
	"github.com/archivista/archivist/internal/mytesting"
	"github.com/archivista/archivist/memory"
)

type MemoryServiceTestSuite struct {
	mytesting.Suite

	gdb     *gorm.DB
	service memory.Service
}

func (s *MemoryServiceTestSuite) SetupTest() {
	s.Suite.SetupTest()

	var err error
	s.gdb, err = db.OpenDB(filepath.Join(s.T().TempDir(), "memory.db"))
	s.Require().NoError(err)

	s.service, err = memory.NewService(s.gdb, slog.Default())
	s.Require().NoError(err)
}

func (s *MemoryServiceTestSuite) TearDownTest() {
	s.Require().NoError(db.CloseDB(s.gdb))
	s.Suite.TearDownTest()
}

func TestMemoryService(t *testing.T) {
	suite.Run(t, new(MemoryServiceTestSuite))
}

func (s *MemoryServiceTestSuite) TestContextRingStaysBounded() {
	for i := range entity.ContextRingSize + 30 {
		s.Require().NoError(s.service.AppendContext(s.Context, "u1", fmt.Sprintf("message %d", i)))
	}

	var count int64
	s.Require().NoError(s.gdb.Model(&entity.UserContextEntry{}).
		Where("user_id = ?", "u1").Count(&count).Error)
	s.Equal(int64(entity.ContextRingSize), count)

	// The survivors are the newest entries.
	entries, err := s.service.RecentContext(s.Context, "u1", 1)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(fmt.Sprintf("message %d", entity.ContextRingSize+29), entries[0].Message)
}

func (s *MemoryServiceTestSuite) TestAppendExpiresOldEntries() {
	stale := entity.UserContextEntry{
		UserID:    "u1",
		Message:   "ancient",
		Timestamp: time.Now().AddDate(0, 0, -(entity.ContextRetentionDays + 1)),
	}
	s.Require().NoError(s.gdb.Create(&stale).Error)

	s.Require().NoError(s.service.AppendContext(s.Context, "u1", "fresh"))

	entries, err := s.service.RecentContext(s.Context, "u1", 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("fresh", entries[0].Message)
}

func (s *MemoryServiceTestSuite) TestRingIsPerUser() {
	s.Require().NoError(s.service.AppendContext(s.Context, "u1", "from u1"))
	s.Require().NoError(s.service.AppendContext(s.Context, "u2", "from u2"))

	entries, err := s.service.RecentContext(s.Context, "u1", 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("from u1", entries[0].Message)
}

func (s *MemoryServiceTestSuite) TestRecentContextChronological() {
	for _, msg := range []string{"first", "second", "third"} {
		s.Require().NoError(s.service.AppendContext(s.Context, "u1", msg))
	}

	entries, err := s.service.RecentContext(s.Context, "u1", 2)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal("second", entries[0].Message)
	s.Equal("third", entries[1].Message)
}

func (s *MemoryServiceTestSuite) TestAppendRejectsEmptyInput() {
	s.Error(s.service.AppendContext(s.Context, "", "hello"))
	s.Error(s.service.AppendContext(s.Context, "u1", ""))
}

func (s *MemoryServiceTestSuite) TestTouchProfileCountsAndMerges() {
	s.Require().NoError(s.service.TouchProfile(s.Context, "u1", &entity.Preferences{Topics: []string{"go"}}))
	s.Require().NoError(s.service.TouchProfile(s.Context, "u1", &entity.Preferences{
		Topics: []string{"go", "sqlite"},
		Terms:  []string{"fts"},
	}))
	s.Require().NoError(s.service.TouchProfile(s.Context, "u1", nil))

	profile, err := s.service.Profile(s.Context, "u1")
	s.Require().NoError(err)
	s.Equal(int64(3), profile.InteractionCount)

	prefs := profile.Preferences.Data()
	s.Equal([]string{"go", "sqlite"}, prefs.Topics)
	s.Equal([]string{"fts"}, prefs.Terms)
}

func (s *MemoryServiceTestSuite) TestProfileNotFound() {
	_, err := s.service.Profile(s.Context, "nobody")
	s.ErrorIs(err, errors.ErrNotFound)
}
