package entity

import (
	"time"

	"gorm.io/datatypes"
)

// UserContextEntry is one message in a user's short-term context ring.
// The ring is bounded to the most recent 120 entries and a 30-day
// retention window; both bounds are enforced inside the same transaction
// as every insert.
type UserContextEntry struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    string    `gorm:"index:idx_context_user;not null"`
	Message   string    `gorm:"type:text;not null"`
	Timestamp time.Time `gorm:"index:idx_context_time"`
}

const (
	ContextRingSize      = 120
	ContextRetentionDays = 30
)

// Preferences is the fixed shape of profile preference data. Only these
// two fields are ever read, so it is a record rather than an open map.
type Preferences struct {
	Topics []string `json:"topics"`
	Terms  []string `json:"terms"`
}

// UserProfile is upserted on every valid message from a user.
type UserProfile struct {
	UserID           string                          `gorm:"primaryKey"`
	Preferences      datatypes.JSONType[Preferences] `gorm:"type:json"`
	InteractionCount int64                           `gorm:"not null;default:0"`
	UpdatedAt        time.Time
}

// Feedback is an append-only user rating of a delivered answer.
type Feedback struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"index:idx_feedback_user;not null"`
	MessageID string `gorm:"not null"`
	Rating    int    `gorm:"not null"`
	Category  string
	Comment   string    `gorm:"type:text"`
	Timestamp time.Time `gorm:"index"`
}
