// Package models contains the persisted entities and error kinds of Circle.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is the public face of an identity-provider user.
type Profile struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username         string    `gorm:"size:30;not null;uniqueIndex" json:"username"`
	FullName         string    `gorm:"size:120" json:"full_name"`
	Bio              string    `gorm:"type:text" json:"bio"`
	AvatarURL        string    `json:"avatar_url"`
	ReputationPoints int64     `gorm:"not null;default:0" json:"reputation_points"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Profile) TableName() string {
	return "profiles"
}

// BeforeCreate assigns an id when the caller did not supply one.
func (p *Profile) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
