// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"testing"
	"time"

	"circle/internal/database"
	"circle/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB returns an in-memory sqlite database with the full schema.
// The pool is pinned to one connection so every query sees the same memory DB.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(database.PersistentModels()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// CreateProfile inserts a profile with a unique username.
func CreateProfile(t testing.TB, db *gorm.DB, username string) *models.Profile {
	t.Helper()
	p := &models.Profile{ID: uuid.New(), Username: username}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create profile %s: %v", username, err)
	}
	return p
}

// CreateCommunity inserts a community led by leader, with the leader as its
// first member and member_count set accordingly.
func CreateCommunity(t testing.TB, db *gorm.DB, slug string, leader *models.Profile) *models.Community {
	t.Helper()
	c := &models.Community{
		ID:          uuid.New(),
		Name:        "Community " + slug,
		Slug:        slug,
		Description: "A community for testing things",
		LeaderID:    leader.ID,
		MemberCount: 1,
		IsActive:    true,
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("create community %s: %v", slug, err)
	}
	m := &models.Membership{CommunityID: c.ID, UserID: leader.ID, Role: models.MembershipRoleLeader}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("create leader membership: %v", err)
	}
	return c
}

// AddMember inserts a membership row and bumps member_count.
func AddMember(t testing.TB, db *gorm.DB, c *models.Community, user *models.Profile) {
	t.Helper()
	m := &models.Membership{CommunityID: c.ID, UserID: user.ID, Role: models.MembershipRoleMember}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("add member: %v", err)
	}
	if err := db.Model(&models.Community{}).Where("id = ?", c.ID).
		UpdateColumn("member_count", gorm.Expr("member_count + 1")).Error; err != nil {
		t.Fatalf("bump member_count: %v", err)
	}
}

// CreateChallenge inserts a challenge spanning [start, end] with the given stored status.
func CreateChallenge(t testing.TB, db *gorm.DB, c *models.Community, start, end time.Time, status models.ChallengeStatus) *models.Challenge {
	t.Helper()
	ch := &models.Challenge{
		ID:          uuid.New(),
		CommunityID: c.ID,
		Title:       "Weekly challenge",
		Description: "Record something worth watching this week",
		StartDate:   start,
		EndDate:     end,
		Status:      status,
		CreatedBy:   c.LeaderID,
	}
	if err := db.Create(ch).Error; err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	return ch
}
