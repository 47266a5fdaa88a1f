package service

import (
	"context"

	"circle/internal/models"
	"circle/internal/repository"

	"github.com/google/uuid"
)

type BadgeService struct {
	badges repository.BadgeRepository
}

func NewBadgeService(badges repository.BadgeRepository) *BadgeService {
	return &BadgeService{badges: badges}
}

// SyncCatalog upserts the catalog by slug.
func (s *BadgeService) SyncCatalog(ctx context.Context, catalog []models.Badge) error {
	return s.badges.UpsertCatalog(ctx, catalog)
}

// Award grants the badge with slug to userID. It returns the badge and
// false when the user already held it.
func (s *BadgeService) Award(ctx context.Context, userID uuid.UUID, slug string) (*models.Badge, bool, error) {
	badge, err := s.badges.GetBySlug(ctx, slug)
	if err != nil {
		return nil, false, err
	}
	awarded, err := s.badges.Award(ctx, userID, badge.ID)
	if err != nil {
		return nil, false, err
	}
	return badge, awarded, nil
}

func (s *BadgeService) List(ctx context.Context) ([]*models.Badge, error) {
	return s.badges.List(ctx)
}

func (s *BadgeService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.UserBadge, error) {
	return s.badges.ListForUser(ctx, userID)
}
