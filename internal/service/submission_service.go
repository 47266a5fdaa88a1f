package service

import (
	"context"
	"strings"
	"time"

	"circle/internal/models"
	"circle/internal/observability"
	"circle/internal/repository"
	"circle/internal/validation"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// SubmissionService implements the one-submission-per-user-per-challenge registry.
type SubmissionService struct {
	submissions repository.SubmissionRepository
	challenges  repository.ChallengeRepository
	memberships repository.MembershipRepository
	now         func() time.Time
}

type SubmitInput struct {
	Title          string
	Description    string
	ContentURL     string
	SubmissionType string
}

// SubmitResult is the stored submission and whether this call created it.
type SubmitResult struct {
	Submission *models.Submission
	Created    bool
	Challenge  *models.Challenge
}

func NewSubmissionService(
	submissions repository.SubmissionRepository,
	challenges repository.ChallengeRepository,
	memberships repository.MembershipRepository,
) *SubmissionService {
	return &SubmissionService{
		submissions: submissions,
		challenges:  challenges,
		memberships: memberships,
		now:         time.Now,
	}
}

// Submit creates userID's submission for the challenge or updates it in place.
// Checks run in order: challenge exists, not expired, eligible, title present,
// content URL allowed.
func (s *SubmissionService) Submit(ctx context.Context, userID, challengeID uuid.UUID, in SubmitInput) (res *SubmitResult, err error) {
	ctx, end := observability.StartSpan(ctx, "submission.submit",
		attribute.String("challenge.id", challengeID.String()))
	defer func() {
		if err != nil {
			countRejection(err)
			observability.SubmissionsTotal.WithLabelValues("rejected").Inc()
		}
		end(&err)
	}()

	challenge, err := s.challenges.GetByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	challenge.Refresh(now)

	switch challenge.Status {
	case models.ChallengeStatusExpired:
		return nil, models.NewChallengeClosedError()
	case models.ChallengeStatusUpcoming:
		return nil, models.NewNotEligibleError("This challenge has not started yet")
	}
	if userID == uuid.Nil {
		return nil, models.NewNotEligibleError("Sign in to submit to challenges")
	}
	member, err := s.memberships.IsMember(ctx, userID, challenge.CommunityID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, models.NewNotEligibleError("Join the community to submit to its challenges")
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewFieldValidationError(map[string]string{"title": "Title is required"})
	}

	submissionType := strings.ToLower(strings.TrimSpace(in.SubmissionType))
	if submissionType == "" {
		submissionType = models.SubmissionTypeVideo
	}
	contentURL, err := validation.NormalizeContentURL(submissionType, in.ContentURL)
	if err != nil {
		return nil, err
	}

	stored, created, err := s.submissions.Upsert(ctx, &models.Submission{
		ChallengeID:    challengeID,
		UserID:         userID,
		Title:          title,
		Description:    strings.TrimSpace(in.Description),
		ContentURL:     contentURL,
		SubmissionType: submissionType,
	})
	if err != nil {
		return nil, err
	}

	outcome := "updated"
	if created {
		outcome = "created"
	}
	observability.SubmissionsTotal.WithLabelValues(outcome).Inc()
	withEmbeds(stored)
	return &SubmitResult{Submission: stored, Created: created, Challenge: challenge}, nil
}

func withEmbeds(subs ...*models.Submission) {
	for _, sub := range subs {
		if sub != nil {
			sub.EmbedID = validation.ExtractYouTubeID(sub.ContentURL)
		}
	}
}

// ListForChallenge returns the challenge's submissions by vote count, with
// Voted set for viewerID.
func (s *SubmissionService) ListForChallenge(ctx context.Context, challengeID, viewerID uuid.UUID, limit, offset int) ([]*models.Submission, error) {
	if _, err := s.challenges.GetByID(ctx, challengeID); err != nil {
		return nil, err
	}
	subs, err := s.submissions.ListByChallenge(ctx, challengeID, viewerID, limit, offset)
	if err != nil {
		return nil, err
	}
	withEmbeds(subs...)
	return subs, nil
}

func (s *SubmissionService) Get(ctx context.Context, id, viewerID uuid.UUID) (*models.Submission, error) {
	sub, err := s.submissions.GetByID(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	withEmbeds(sub)
	return sub, nil
}

func (s *SubmissionService) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Submission, error) {
	subs, err := s.submissions.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	withEmbeds(subs...)
	return subs, nil
}

// Mine returns userID's submission for the challenge, or nil when there is none.
func (s *SubmissionService) Mine(ctx context.Context, challengeID, userID uuid.UUID) (*models.Submission, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	sub, err := s.submissions.GetByChallengeAndUser(ctx, challengeID, userID)
	if models.IsCode(err, models.CodeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	withEmbeds(sub)
	return sub, nil
}
