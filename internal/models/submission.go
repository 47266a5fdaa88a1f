package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Submission types
const (
	SubmissionTypeVideo      = "video"
	SubmissionTypeLivestream = "livestream"
)

// Submission is a user's entry to a challenge. At most one per user and challenge.
type Submission struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChallengeID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_submissions_challenge_user" json:"challenge_id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_submissions_challenge_user;index" json:"user_id"`
	User           *Profile  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title          string    `gorm:"size:200;not null" json:"title"`
	Description    string    `gorm:"type:text" json:"description"`
	ContentURL     string    `gorm:"not null" json:"content_url"`
	SubmissionType string    `gorm:"type:varchar(20);not null;default:'video'" json:"submission_type"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Derived at read time from the votes table.
	VoteCount int64 `gorm:"->;-:migration" json:"vote_count"`
	Voted     bool  `gorm:"->;-:migration" json:"voted"`

	// YouTube video id for embedding; empty for other hosts.
	EmbedID string `gorm:"-" json:"embed_id,omitempty"`
}

// TableName specifies the table name for GORM.
func (Submission) TableName() string {
	return "submissions"
}

// BeforeCreate assigns an id when the caller did not supply one.
func (s *Submission) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Vote is one user's vote on one submission.
type Vote struct {
	SubmissionID uuid.UUID `gorm:"type:uuid;primaryKey" json:"submission_id"`
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Vote) TableName() string {
	return "votes"
}
