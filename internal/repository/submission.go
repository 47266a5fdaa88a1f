package repository

import (
	"context"

	"circle/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubmissionRepository defines the interface for submission data operations.
// Reads fill VoteCount from the vote ledger and Voted for the viewer.
type SubmissionRepository interface {
	Upsert(ctx context.Context, submission *models.Submission) (*models.Submission, bool, error)
	GetByID(ctx context.Context, id, viewerID uuid.UUID) (*models.Submission, error)
	GetByChallengeAndUser(ctx context.Context, challengeID, userID uuid.UUID) (*models.Submission, error)
	ListByChallenge(ctx context.Context, challengeID, viewerID uuid.UUID, limit, offset int) ([]*models.Submission, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Submission, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// Upsert inserts the submission or, when (challenge_id, user_id) already
// exists, updates its content in place. It returns the stored row and
// whether this call created it. Creation is decided by the insert itself, so
// of two racing first submissions only one reports created.
func (r *submissionRepository) Upsert(ctx context.Context, submission *models.Submission) (*models.Submission, bool, error) {
	db := r.db.WithContext(ctx)
	res := db.Omit("User").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "challenge_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(submission)
	if res.Error != nil {
		return nil, false, models.NewStorageError(res.Error)
	}

	created := res.RowsAffected == 1
	if !created {
		err := db.Model(&models.Submission{}).
			Where("challenge_id = ? AND user_id = ?", submission.ChallengeID, submission.UserID).
			Updates(map[string]interface{}{
				"title":           submission.Title,
				"description":     submission.Description,
				"content_url":     submission.ContentURL,
				"submission_type": submission.SubmissionType,
			}).Error
		if err != nil {
			return nil, false, models.NewStorageError(err)
		}
	}

	stored, err := r.GetByChallengeAndUser(ctx, submission.ChallengeID, submission.UserID)
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

// withDetails adds the derived vote_count and voted columns.
func (r *submissionRepository) withDetails(db *gorm.DB, viewerID uuid.UUID) *gorm.DB {
	selectQuery := "submissions.*, " +
		"(SELECT COUNT(*) FROM votes WHERE votes.submission_id = submissions.id) AS vote_count"

	if viewerID != uuid.Nil {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM votes WHERE votes.submission_id = submissions.id AND votes.user_id = ?) AS voted", viewerID)
	}
	return db.Select(selectQuery + ", 0 = 1 AS voted")
}

func (r *submissionRepository) GetByID(ctx context.Context, id, viewerID uuid.UUID) (*models.Submission, error) {
	var submission models.Submission
	err := r.withDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Where("submissions.id = ?", id).
		First(&submission).Error
	if err != nil {
		return nil, storageErr(err, "Submission", id)
	}
	return &submission, nil
}

func (r *submissionRepository) GetByChallengeAndUser(ctx context.Context, challengeID, userID uuid.UUID) (*models.Submission, error) {
	var submission models.Submission
	err := r.withDetails(r.db.WithContext(ctx), userID).
		Where("submissions.challenge_id = ? AND submissions.user_id = ?", challengeID, userID).
		First(&submission).Error
	if err != nil {
		return nil, storageErr(err, "Submission", challengeID)
	}
	return &submission, nil
}

// ListByChallenge orders by vote count, then by who submitted first.
func (r *submissionRepository) ListByChallenge(ctx context.Context, challengeID, viewerID uuid.UUID, limit, offset int) ([]*models.Submission, error) {
	limit, offset = clampPage(limit, offset)
	var submissions []*models.Submission
	err := r.withDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Where("submissions.challenge_id = ?", challengeID).
		Order("vote_count DESC, submissions.created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&submissions).Error
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return submissions, nil
}

func (r *submissionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Submission, error) {
	limit, offset = clampPage(limit, offset)
	var submissions []*models.Submission
	err := r.withDetails(r.db.WithContext(ctx), userID).
		Where("submissions.user_id = ?", userID).
		Order("submissions.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&submissions).Error
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return submissions, nil
}

func (r *submissionRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, models.NewStorageError(err)
	}
	return count, nil
}
