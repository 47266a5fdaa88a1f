package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Community is an interest group led by one user.
type Community struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:120;not null" json:"name"`
	Slug        string    `gorm:"size:48;not null;uniqueIndex" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    string    `json:"image_url"`
	LeaderID    uuid.UUID `gorm:"type:uuid;not null;index" json:"leader_id"`
	Leader      *Profile  `gorm:"foreignKey:LeaderID" json:"leader,omitempty"`
	MemberCount int64     `gorm:"not null;default:0" json:"member_count"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Community) TableName() string {
	return "communities"
}

// BeforeCreate assigns an id when the caller did not supply one.
func (c *Community) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// MembershipRole defines a member's role in a community.
type MembershipRole string

const (
	// MembershipRoleLeader is held by the community creator.
	MembershipRoleLeader MembershipRole = "leader"
	// MembershipRoleMember is the default role.
	MembershipRoleMember MembershipRole = "member"
)

// Membership maps users to communities. The composite key makes a second
// join by the same user a unique violation.
type Membership struct {
	CommunityID uuid.UUID      `gorm:"type:uuid;primaryKey" json:"community_id"`
	UserID      uuid.UUID      `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	Role        MembershipRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	JoinedAt    time.Time      `gorm:"autoCreateTime" json:"joined_at"`
}

// TableName specifies the table name for GORM.
func (Membership) TableName() string {
	return "community_memberships"
}
