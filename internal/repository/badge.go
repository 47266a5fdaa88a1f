package repository

import (
	"context"

	"circle/internal/cache"
	"circle/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BadgeRepository defines the interface for badge catalog and award operations
type BadgeRepository interface {
	UpsertCatalog(ctx context.Context, badges []models.Badge) error
	List(ctx context.Context) ([]*models.Badge, error)
	GetBySlug(ctx context.Context, slug string) (*models.Badge, error)
	Award(ctx context.Context, userID, badgeID uuid.UUID) (bool, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.UserBadge, error)
}

type badgeRepository struct {
	db *gorm.DB
}

// NewBadgeRepository creates a new badge repository
func NewBadgeRepository(db *gorm.DB) BadgeRepository {
	return &badgeRepository{db: db}
}

// UpsertCatalog inserts badges by slug, refreshing name, description and icon
// of the ones already present.
func (r *badgeRepository) UpsertCatalog(ctx context.Context, badges []models.Badge) error {
	if len(badges) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "icon", "updated_at"}),
	}).Create(&badges).Error
	if err != nil {
		return models.NewStorageError(err)
	}
	cache.Invalidate(ctx, cache.BadgeCatalogKey)
	return nil
}

// List returns the whole catalog. It changes only on deploy, so it is cached.
func (r *badgeRepository) List(ctx context.Context) ([]*models.Badge, error) {
	var badges []*models.Badge
	err := cache.Aside(ctx, cache.BadgeCatalogKey, &badges, cache.BadgeCatalogTTL, func() error {
		if err := r.db.WithContext(ctx).Order("slug ASC").Find(&badges).Error; err != nil {
			return models.NewStorageError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return badges, nil
}

func (r *badgeRepository) GetBySlug(ctx context.Context, slug string) (*models.Badge, error) {
	var badge models.Badge
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&badge).Error; err != nil {
		return nil, storageErr(err, "Badge", slug)
	}
	return &badge, nil
}

// Award grants a badge once. It reports false when the user already had it.
func (r *badgeRepository) Award(ctx context.Context, userID, badgeID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Omit("Badge").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserBadge{UserID: userID, BadgeID: badgeID})
	if res.Error != nil {
		return false, models.NewStorageError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *badgeRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.UserBadge, error) {
	var badges []*models.UserBadge
	err := r.db.WithContext(ctx).
		Preload("Badge").
		Where("user_id = ?", userID).
		Order("earned_at ASC").
		Find(&badges).Error
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return badges, nil
}
