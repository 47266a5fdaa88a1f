package repository

import (
	"context"
	"time"

	"circle/internal/cache"
	"circle/internal/database"
	"circle/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MembershipRepository is the ledger of (user, community) memberships.
// Join and Leave lock the community row, then recompute
// communities.member_count from the ledger in the same transaction as the
// row change.
type MembershipRepository interface {
	Join(ctx context.Context, userID, communityID uuid.UUID) (int64, error)
	Leave(ctx context.Context, userID, communityID uuid.UUID) (int64, error)
	IsMember(ctx context.Context, userID, communityID uuid.UUID) (bool, error)
}

type membershipRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db, now: time.Now}
}

const recomputeMemberCountSQL = `UPDATE communities
SET member_count = (SELECT COUNT(*) FROM community_memberships WHERE community_id = ?), updated_at = ?
WHERE id = ?`

func (r *membershipRepository) Join(ctx context.Context, userID, communityID uuid.UUID) (int64, error) {
	var community models.Community
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockCommunity(tx, &community, communityID); err != nil {
			return err
		}
		m := &models.Membership{
			CommunityID: communityID,
			UserID:      userID,
			Role:        models.MembershipRoleMember,
		}
		if err := tx.Create(m).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return models.NewAlreadyMemberError()
			}
			return err
		}
		return r.recompute(tx, &community)
	})
	if err != nil {
		return 0, storageErr(err, "Community", communityID)
	}
	cache.InvalidateCommunity(ctx, community.ID, community.Slug)
	return community.MemberCount, nil
}

func (r *membershipRepository) Leave(ctx context.Context, userID, communityID uuid.UUID) (int64, error) {
	var community models.Community
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockCommunity(tx, &community, communityID); err != nil {
			return err
		}
		res := tx.Where("community_id = ? AND user_id = ?", communityID, userID).Delete(&models.Membership{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotMemberError()
		}
		return r.recompute(tx, &community)
	})
	if err != nil {
		return 0, storageErr(err, "Community", communityID)
	}
	cache.InvalidateCommunity(ctx, community.ID, community.Slug)
	return community.MemberCount, nil
}

// lockCommunity reads the community FOR UPDATE so concurrent joins and
// leaves recompute member_count one at a time.
func lockCommunity(tx *gorm.DB, c *models.Community, id uuid.UUID) error {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "slug").
		First(c, "id = ?", id).Error
}

// recompute sets member_count from the ledger and reads it back into c.
func (r *membershipRepository) recompute(tx *gorm.DB, c *models.Community) error {
	if err := tx.Exec(recomputeMemberCountSQL, c.ID, r.now().UTC(), c.ID).Error; err != nil {
		return err
	}
	return tx.Model(&models.Community{}).Where("id = ?", c.ID).Select("member_count").Scan(&c.MemberCount).Error
}

func (r *membershipRepository) IsMember(ctx context.Context, userID, communityID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Membership{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count).Error
	if err != nil {
		return false, models.NewStorageError(err)
	}
	return count > 0, nil
}
