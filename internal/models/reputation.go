package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReputationEntry is an append-only point delta for a user.
type ReputationEntry struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Points              int64      `gorm:"not null" json:"points"`
	Reason              string     `gorm:"size:255;not null" json:"reason"`
	RelatedSubmissionID *uuid.UUID `gorm:"type:uuid" json:"related_submission_id,omitempty"`
	RelatedChallengeID  *uuid.UUID `gorm:"type:uuid" json:"related_challenge_id,omitempty"`
	CreatedAt           time.Time  `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for GORM.
func (ReputationEntry) TableName() string {
	return "reputation_history"
}

// BeforeCreate assigns an id when the caller did not supply one.
func (r *ReputationEntry) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
