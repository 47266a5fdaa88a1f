package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification kinds
const (
	NotificationKindVote       = "vote"
	NotificationKindBadge      = "badge"
	NotificationKindReputation = "reputation"
)

// Notification is a per-user notice.
type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind      string    `gorm:"type:varchar(30);not null" json:"kind"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	Link      string    `json:"link"`
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate assigns an id when the caller did not supply one.
func (n *Notification) BeforeCreate(_ *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
