package repository

import (
	"context"

	"circle/internal/database"
	"circle/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VoteRepository is the ledger of (user, submission) votes.
type VoteRepository interface {
	Create(ctx context.Context, vote *models.Vote) error
	Delete(ctx context.Context, submissionID, userID uuid.UUID) error
	Exists(ctx context.Context, submissionID, userID uuid.UUID) (bool, error)
	Count(ctx context.Context, submissionID uuid.UUID) (int64, error)
}

type voteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

// Create relies on the (submission_id, user_id) primary key to reject
// duplicates, so concurrent double votes resolve to one row.
func (r *voteRepository) Create(ctx context.Context, vote *models.Vote) error {
	if err := r.db.WithContext(ctx).Create(vote).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return models.NewAlreadyVotedError()
		}
		return models.NewStorageError(err)
	}
	return nil
}

func (r *voteRepository) Delete(ctx context.Context, submissionID, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("submission_id = ? AND user_id = ?", submissionID, userID).
		Delete(&models.Vote{})
	if res.Error != nil {
		return models.NewStorageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotVotedError()
	}
	return nil
}

func (r *voteRepository) Exists(ctx context.Context, submissionID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("submission_id = ? AND user_id = ?", submissionID, userID).
		Count(&count).Error
	if err != nil {
		return false, models.NewStorageError(err)
	}
	return count > 0, nil
}

func (r *voteRepository) Count(ctx context.Context, submissionID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Vote{}).Where("submission_id = ?", submissionID).Count(&count).Error; err != nil {
		return 0, models.NewStorageError(err)
	}
	return count, nil
}
