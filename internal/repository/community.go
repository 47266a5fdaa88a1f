package repository

import (
	"context"

	"circle/internal/cache"
	"circle/internal/database"
	"circle/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommunityRepository defines the interface for community data operations
type CommunityRepository interface {
	Create(ctx context.Context, community *models.Community) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Community, error)
	GetBySlug(ctx context.Context, slug string) (*models.Community, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*models.Community, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Community, error)
	ListLedBy(ctx context.Context, userID uuid.UUID) ([]*models.Community, error)
}

type communityRepository struct {
	db *gorm.DB
}

// NewCommunityRepository creates a new community repository
func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

// Create inserts the community and its leader's membership together.
// member_count starts at 1.
func (r *communityRepository) Create(ctx context.Context, community *models.Community) error {
	community.MemberCount = 1
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Leader").Create(community).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return models.NewFieldValidationError(map[string]string{
					"slug": "A community with this name already exists",
				})
			}
			return err
		}
		leader := &models.Membership{
			CommunityID: community.ID,
			UserID:      community.LeaderID,
			Role:        models.MembershipRoleLeader,
		}
		return tx.Create(leader).Error
	})
	return storageErr(err, "Community", community.ID)
}

func (r *communityRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Community, error) {
	var community models.Community
	err := cache.Aside(ctx, cache.CommunityKey(id.String()), &community, cache.CommunityTTL, func() error {
		return r.db.WithContext(ctx).Preload("Leader").First(&community, "id = ?", id).Error
	})
	if err != nil {
		return nil, storageErr(err, "Community", id)
	}
	return &community, nil
}

func (r *communityRepository) GetBySlug(ctx context.Context, slug string) (*models.Community, error) {
	var community models.Community
	err := cache.Aside(ctx, cache.CommunityKey(slug), &community, cache.CommunityTTL, func() error {
		return r.db.WithContext(ctx).Preload("Leader").Where("slug = ?", slug).First(&community).Error
	})
	if err != nil {
		return nil, storageErr(err, "Community", slug)
	}
	return &community, nil
}

func (r *communityRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Community{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, models.NewStorageError(err)
	}
	return count > 0, nil
}

func (r *communityRepository) List(ctx context.Context, limit, offset int) ([]*models.Community, error) {
	limit, offset = clampPage(limit, offset)
	var communities []*models.Community
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("member_count DESC, created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&communities).Error
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return communities, nil
}

func (r *communityRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Community, error) {
	var communities []*models.Community
	err := r.db.WithContext(ctx).
		Joins("JOIN community_memberships ON community_memberships.community_id = communities.id").
		Where("community_memberships.user_id = ?", userID).
		Order("community_memberships.joined_at DESC").
		Find(&communities).Error
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return communities, nil
}

func (r *communityRepository) ListLedBy(ctx context.Context, userID uuid.UUID) ([]*models.Community, error) {
	var communities []*models.Community
	err := r.db.WithContext(ctx).
		Where("leader_id = ? AND is_active = ?", userID, true).
		Order("name ASC").
		Find(&communities).Error
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return communities, nil
}
