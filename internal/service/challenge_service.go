package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"circle/internal/middleware"
	"circle/internal/models"
	"circle/internal/observability"
	"circle/internal/repository"
	"circle/internal/validation"

	"github.com/google/uuid"
)

// ChallengeService implements the challenge lifecycle. Status is always
// derived from the dates at read time; the stored column is a hint kept
// fresh by Reconcile.
type ChallengeService struct {
	challenges  repository.ChallengeRepository
	communities repository.CommunityRepository
	memberships repository.MembershipRepository
	now         func() time.Time
}

type CreateChallengeInput struct {
	Title       string
	Description string
	CommunityID uuid.UUID
	StartDate   *time.Time
	EndDate     *time.Time
}

func NewChallengeService(
	challenges repository.ChallengeRepository,
	communities repository.CommunityRepository,
	memberships repository.MembershipRepository,
) *ChallengeService {
	return &ChallengeService{
		challenges:  challenges,
		communities: communities,
		memberships: memberships,
		now:         time.Now,
	}
}

// Create validates the draft, checks that userID leads the community and
// stores the challenge with its status at creation time.
func (s *ChallengeService) Create(ctx context.Context, userID uuid.UUID, in CreateChallengeInput) (*models.Challenge, error) {
	if userID == uuid.Nil {
		return nil, models.NewUnauthorizedError("Sign in to create challenges")
	}
	now := s.now().UTC()
	err := validation.ValidateChallenge(validation.ChallengeDraft{
		Title:       in.Title,
		Description: in.Description,
		CommunityID: in.CommunityID,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	}, now)
	if err != nil {
		countRejection(err)
		return nil, err
	}

	community, err := s.communities.GetByID(ctx, in.CommunityID)
	if err != nil {
		return nil, err
	}
	if community.LeaderID != userID {
		err := models.NewNotEligibleError("Only the community leader can create challenges")
		countRejection(err)
		return nil, err
	}

	challenge := &models.Challenge{
		CommunityID: community.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		StartDate:   in.StartDate.UTC(),
		EndDate:     in.EndDate.UTC(),
		CreatedBy:   userID,
	}
	challenge.Status = models.DeriveStatus(challenge, now)
	if err := s.challenges.Create(ctx, challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

// Get returns the challenge with its live status.
func (s *ChallengeService) Get(ctx context.Context, id uuid.UUID) (*models.Challenge, error) {
	challenge, err := s.challenges.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	challenge.Refresh(s.now())
	return challenge, nil
}

// CanSubmit reports whether userID may submit to challenge right now: they
// must be signed in, belong to the community and the challenge must be active.
func (s *ChallengeService) CanSubmit(ctx context.Context, userID uuid.UUID, challenge *models.Challenge) (bool, error) {
	if userID == uuid.Nil || challenge == nil {
		return false, nil
	}
	if models.DeriveStatus(challenge, s.now()) != models.ChallengeStatusActive {
		return false, nil
	}
	return s.memberships.IsMember(ctx, userID, challenge.CommunityID)
}

func (s *ChallengeService) ListActive(ctx context.Context, limit, offset int) ([]*models.Challenge, error) {
	now := s.now().UTC()
	challenges, err := s.challenges.ListActive(ctx, now, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.refreshAll(challenges, now), nil
}

func (s *ChallengeService) ListByCommunity(ctx context.Context, communityID uuid.UUID, limit, offset int) ([]*models.Challenge, error) {
	if _, err := s.communities.GetByID(ctx, communityID); err != nil {
		return nil, err
	}
	challenges, err := s.challenges.ListByCommunity(ctx, communityID, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.refreshAll(challenges, s.now()), nil
}

func (s *ChallengeService) refreshAll(challenges []*models.Challenge, now time.Time) []*models.Challenge {
	for _, c := range challenges {
		c.Refresh(now)
	}
	return challenges
}

// Reconcile rewrites every stored status that disagrees with the derived
// one and returns how many rows changed. Dates are never touched.
func (s *ChallengeService) Reconcile(ctx context.Context) (updated int, err error) {
	ctx, end := observability.StartSpan(ctx, "challenge.reconcile")
	defer func() { end(&err) }()

	challenges, err := s.challenges.ListUnexpired(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	for _, c := range challenges {
		if !c.Refresh(now) {
			continue
		}
		changed, err := s.challenges.UpdateStatus(ctx, c.ID, c.Status)
		if err != nil {
			return updated, err
		}
		if changed {
			updated++
		}
	}

	if updated > 0 {
		observability.ReconciledChallenges.Add(float64(updated))
		middleware.Logger.InfoContext(ctx, "Reconciled challenge statuses", slog.Int("updated", updated))
	}
	return updated, nil
}
