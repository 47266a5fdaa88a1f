package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Badge is a catalog entry loaded from the embedded badge list.
type Badge struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id" yaml:"-"`
	Slug        string    `gorm:"size:48;not null;uniqueIndex" json:"slug" yaml:"slug"`
	Name        string    `gorm:"size:120;not null" json:"name" yaml:"name"`
	Description string    `gorm:"type:text" json:"description" yaml:"description"`
	Icon        string    `gorm:"size:64" json:"icon" yaml:"icon"`
	CreatedAt   time.Time `json:"-" yaml:"-"`
	UpdatedAt   time.Time `json:"-" yaml:"-"`
}

// TableName specifies the table name for GORM.
func (Badge) TableName() string {
	return "badges"
}

// BeforeCreate assigns an id when the caller did not supply one.
func (b *Badge) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// UserBadge records that a user earned a badge.
type UserBadge struct {
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	BadgeID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"badge_id"`
	Badge    *Badge    `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
	EarnedAt time.Time `gorm:"autoCreateTime" json:"earned_at"`
}

// TableName specifies the table name for GORM.
func (UserBadge) TableName() string {
	return "user_badges"
}
