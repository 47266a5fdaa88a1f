package repository

import (
	"context"
	"time"

	"circle/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChallengeRepository defines the interface for challenge data operations.
// Stored status is returned as persisted; callers derive the live status.
type ChallengeRepository interface {
	Create(ctx context.Context, challenge *models.Challenge) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Challenge, error)
	ListActive(ctx context.Context, now time.Time, limit, offset int) ([]*models.Challenge, error)
	ListByCommunity(ctx context.Context, communityID uuid.UUID, limit, offset int) ([]*models.Challenge, error)
	ListUnexpired(ctx context.Context) ([]*models.Challenge, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ChallengeStatus) (bool, error)
}

type challengeRepository struct {
	db *gorm.DB
}

// NewChallengeRepository creates a new challenge repository
func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

func (r *challengeRepository) Create(ctx context.Context, challenge *models.Challenge) error {
	if err := r.db.WithContext(ctx).Omit("Community").Create(challenge).Error; err != nil {
		return models.NewStorageError(err)
	}
	return nil
}

func (r *challengeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Challenge, error) {
	var challenge models.Challenge
	if err := r.db.WithContext(ctx).Preload("Community").First(&challenge, "id = ?", id).Error; err != nil {
		return nil, storageErr(err, "Challenge", id)
	}
	return &challenge, nil
}

// ListActive returns challenges whose window contains now, soonest ending first.
func (r *challengeRepository) ListActive(ctx context.Context, now time.Time, limit, offset int) ([]*models.Challenge, error) {
	limit, offset = clampPage(limit, offset)
	var challenges []*models.Challenge
	err := r.db.WithContext(ctx).
		Preload("Community").
		Where("start_date <= ? AND end_date >= ?", now, now).
		Order("end_date ASC").
		Limit(limit).
		Offset(offset).
		Find(&challenges).Error
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return challenges, nil
}

func (r *challengeRepository) ListByCommunity(ctx context.Context, communityID uuid.UUID, limit, offset int) ([]*models.Challenge, error) {
	limit, offset = clampPage(limit, offset)
	var challenges []*models.Challenge
	err := r.db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("start_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&challenges).Error
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return challenges, nil
}

// ListUnexpired returns every challenge whose stored status is not expired.
// Expired is terminal since dates never change, so these are the only rows
// that can go stale.
func (r *challengeRepository) ListUnexpired(ctx context.Context) ([]*models.Challenge, error) {
	var challenges []*models.Challenge
	err := r.db.WithContext(ctx).
		Where("status <> ?", models.ChallengeStatusExpired).
		Find(&challenges).Error
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return challenges, nil
}

// UpdateStatus writes status only when it differs from the stored value and
// reports whether a row changed.
func (r *challengeRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ChallengeStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Challenge{}).
		Where("id = ? AND status <> ?", id, status).
		Update("status", status)
	if res.Error != nil {
		return false, models.NewStorageError(res.Error)
	}
	return res.RowsAffected > 0, nil
}
