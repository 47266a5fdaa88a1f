package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChallengeStatus is the temporal state of a challenge.
type ChallengeStatus string

const (
	// ChallengeStatusUpcoming means the challenge has not started yet.
	ChallengeStatusUpcoming ChallengeStatus = "upcoming"
	// ChallengeStatusActive means submissions are open.
	ChallengeStatusActive ChallengeStatus = "active"
	// ChallengeStatusExpired means the end date has passed.
	ChallengeStatusExpired ChallengeStatus = "expired"
)

// Challenge is a time-boxed prompt inside a community.
type Challenge struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CommunityID uuid.UUID  `gorm:"type:uuid;not null;index" json:"community_id"`
	Community   *Community `gorm:"foreignKey:CommunityID" json:"community,omitempty"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	StartDate   time.Time  `gorm:"not null;index" json:"start_date"`
	EndDate     time.Time  `gorm:"not null;index" json:"end_date"`
	// Status is the last reconciled value. Readers use DeriveStatus.
	Status    ChallengeStatus `gorm:"type:varchar(20);not null;default:'upcoming'" json:"status"`
	CreatedBy uuid.UUID       `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Challenge) TableName() string {
	return "challenges"
}

// BeforeCreate assigns an id when the caller did not supply one.
func (c *Challenge) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// DeriveStatus computes the status of c at now from its dates alone.
// Both bounds are inclusive for the active window.
func DeriveStatus(c *Challenge, now time.Time) ChallengeStatus {
	switch {
	case now.Before(c.StartDate):
		return ChallengeStatusUpcoming
	case now.After(c.EndDate):
		return ChallengeStatusExpired
	default:
		return ChallengeStatusActive
	}
}

// Refresh overwrites the stored status with the derived one and reports
// whether it changed.
func (c *Challenge) Refresh(now time.Time) bool {
	derived := DeriveStatus(c, now)
	if c.Status == derived {
		return false
	}
	c.Status = derived
	return true
}
