package memory

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/archivista/archivist/entity"
	"github.com/archivista/archivist/errors"
	"github.com/archivista/archivist/internal/db"
)

type (
	// Service keeps the per-user conversation memory: a bounded ring of
	// recent messages plus a long-lived profile.
	Service interface {
		AppendContext(ctx context.Context, userID, message string) error
		RecentContext(ctx context.Context, userID string, limit int) ([]entity.UserContextEntry, error)
		TouchProfile(ctx context.Context, userID string, prefs *entity.Preferences) error
		Profile(ctx context.Context, userID string) (*entity.UserProfile, error)
	}

	service struct {
		db     *gorm.DB
		logger *slog.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(gdb *gorm.DB, logger *slog.Logger) (Service, error) {
	if err := db.AutoMigrate(gdb); err != nil {
		return nil, errors.Wrapf(err, "failed to migrate memory schema")
	}

	return &service{db: gdb, logger: logger}, nil
}

// AppendContext records a message and trims the user's ring in the same
// transaction, so a reader never observes more than ContextRingSize
// entries or anything older than the retention window.
func (s *service) AppendContext(ctx context.Context, userID, message string) error {
	if userID == "" || message == "" {
		return errors.Wrapf(errors.ErrInvalidParams, "empty user id or message")
	}

	now := time.Now()

	return errors.WithStack(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry := entity.UserContextEntry{
			UserID:    userID,
			Message:   message,
			Timestamp: now,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return errors.Wrapf(err, "failed to append context entry")
		}

		err := tx.Exec(`
			DELETE FROM user_context_entries
			WHERE user_id = ? AND id NOT IN (
				SELECT id FROM user_context_entries
				WHERE user_id = ?
				ORDER BY timestamp DESC, id DESC
				LIMIT ?
			)`, userID, userID, entity.ContextRingSize).Error
		if err != nil {
			return errors.Wrapf(err, "failed to trim context ring")
		}

		cutoff := now.AddDate(0, 0, -entity.ContextRetentionDays)
		err = tx.Where("user_id = ? AND timestamp < ?", userID, cutoff).
			Delete(&entity.UserContextEntry{}).Error

		return errors.Wrapf(err, "failed to expire old context entries")
	}))
}

// RecentContext returns up to limit of the user's newest entries in
// chronological order.
func (s *service) RecentContext(ctx context.Context, userID string, limit int) ([]entity.UserContextEntry, error) {
	var entries []entity.UserContextEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load recent context")
	}

	lo.Reverse(entries)

	return entries, nil
}

// TouchProfile bumps the interaction counter and merges any new
// preferences into the stored profile, creating it on first contact.
func (s *service) TouchProfile(ctx context.Context, userID string, prefs *entity.Preferences) error {
	if userID == "" {
		return errors.Wrapf(errors.ErrInvalidParams, "empty user id")
	}

	return errors.WithStack(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile entity.UserProfile
		creating := false

		err := tx.Where("user_id = ?", userID).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = entity.UserProfile{UserID: userID}
			creating = true
		} else if err != nil {
			return errors.Wrapf(err, "failed to load profile")
		}

		merged := profile.Preferences.Data()
		if prefs != nil {
			merged.Topics = lo.Uniq(append(merged.Topics, prefs.Topics...))
			merged.Terms = lo.Uniq(append(merged.Terms, prefs.Terms...))
		}

		profile.Preferences = datatypes.NewJSONType(merged)
		profile.InteractionCount++
		profile.UpdatedAt = time.Now()

		if creating {
			return errors.Wrapf(tx.Create(&profile).Error, "failed to create profile")
		}

		// Save, not Updates: a zeroed preference column must still win.
		return errors.Wrapf(tx.Save(&profile).Error, "failed to save profile")
	}))
}

func (s *service) Profile(ctx context.Context, userID string) (*entity.UserProfile, error) {
	var profile entity.UserProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(errors.ErrNotFound, "no profile for user %s", userID)
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to load profile")
	}

	return &profile, nil
}
