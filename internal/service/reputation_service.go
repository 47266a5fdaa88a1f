package service

import (
	"context"
	"strings"

	"circle/internal/models"
	"circle/internal/observability"
	"circle/internal/repository"

	"github.com/google/uuid"
)

// ReputationService appends to the points ledger and reads totals.
type ReputationService struct {
	reputation repository.ReputationRepository
}

type AwardInput struct {
	UserID              uuid.UUID
	Points              int64
	Reason              string
	RelatedSubmissionID *uuid.UUID
	RelatedChallengeID  *uuid.UUID
}

func NewReputationService(reputation repository.ReputationRepository) *ReputationService {
	return &ReputationService{reputation: reputation}
}

// Award appends an entry and returns it with the user's new total.
func (s *ReputationService) Award(ctx context.Context, in AwardInput) (_ *models.ReputationEntry, total int64, err error) {
	ctx, end := observability.StartSpan(ctx, "reputation.award")
	defer func() { end(&err) }()

	reason := strings.TrimSpace(in.Reason)
	fields := map[string]string{}
	if reason == "" {
		fields["reason"] = "Reason is required"
	}
	if in.Points == 0 {
		fields["points"] = "Points must not be zero"
	}
	if len(fields) > 0 {
		return nil, 0, models.NewFieldValidationError(fields)
	}

	entry := &models.ReputationEntry{
		UserID:              in.UserID,
		Points:              in.Points,
		Reason:              reason,
		RelatedSubmissionID: in.RelatedSubmissionID,
		RelatedChallengeID:  in.RelatedChallengeID,
	}
	total, err = s.reputation.Award(ctx, entry)
	if err != nil {
		return nil, 0, err
	}
	observability.ReputationAwarded.WithLabelValues(reason).Inc()
	return entry, total, nil
}

// History returns the user's entries newest first.
func (s *ReputationService) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.ReputationEntry, error) {
	return s.reputation.History(ctx, userID, limit, offset)
}

func (s *ReputationService) Total(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.reputation.Total(ctx, userID)
}
