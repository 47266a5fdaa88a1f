package service

import (
	"context"
	"time"

	"circle/internal/models"

	"github.com/google/uuid"
)

// communityRepoStub is a stub for repository.CommunityRepository.
type communityRepoStub struct {
	createFn      func(context.Context, *models.Community) error
	getByIDFn     func(context.Context, uuid.UUID) (*models.Community, error)
	getBySlugFn   func(context.Context, string) (*models.Community, error)
	slugExistsFn  func(context.Context, string) (bool, error)
	listFn        func(context.Context, int, int) ([]*models.Community, error)
	listForUserFn func(context.Context, uuid.UUID) ([]*models.Community, error)
	listLedByFn   func(context.Context, uuid.UUID) ([]*models.Community, error)
}

func (s *communityRepoStub) Create(ctx context.Context, c *models.Community) error {
	return s.createFn(ctx, c)
}
func (s *communityRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*models.Community, error) {
	return s.getByIDFn(ctx, id)
}
func (s *communityRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Community, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *communityRepoStub) SlugExists(ctx context.Context, slug string) (bool, error) {
	return s.slugExistsFn(ctx, slug)
}
func (s *communityRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Community, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *communityRepoStub) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Community, error) {
	return s.listForUserFn(ctx, userID)
}
func (s *communityRepoStub) ListLedBy(ctx context.Context, userID uuid.UUID) ([]*models.Community, error) {
	return s.listLedByFn(ctx, userID)
}

func noopCommunityRepo() *communityRepoStub {
	return &communityRepoStub{
		createFn: func(_ context.Context, _ *models.Community) error { return nil },
		getByIDFn: func(_ context.Context, id uuid.UUID) (*models.Community, error) {
			return &models.Community{ID: id}, nil
		},
		getBySlugFn: func(_ context.Context, slug string) (*models.Community, error) {
			return &models.Community{ID: uuid.New(), Slug: slug}, nil
		},
		slugExistsFn:  func(_ context.Context, _ string) (bool, error) { return false, nil },
		listFn:        func(_ context.Context, _, _ int) ([]*models.Community, error) { return nil, nil },
		listForUserFn: func(_ context.Context, _ uuid.UUID) ([]*models.Community, error) { return nil, nil },
		listLedByFn:   func(_ context.Context, _ uuid.UUID) ([]*models.Community, error) { return nil, nil },
	}
}

// membershipRepoStub is a stub for repository.MembershipRepository.
type membershipRepoStub struct {
	joinFn     func(context.Context, uuid.UUID, uuid.UUID) (int64, error)
	leaveFn    func(context.Context, uuid.UUID, uuid.UUID) (int64, error)
	isMemberFn func(context.Context, uuid.UUID, uuid.UUID) (bool, error)
}

func (s *membershipRepoStub) Join(ctx context.Context, userID, communityID uuid.UUID) (int64, error) {
	return s.joinFn(ctx, userID, communityID)
}
func (s *membershipRepoStub) Leave(ctx context.Context, userID, communityID uuid.UUID) (int64, error) {
	return s.leaveFn(ctx, userID, communityID)
}
func (s *membershipRepoStub) IsMember(ctx context.Context, userID, communityID uuid.UUID) (bool, error) {
	return s.isMemberFn(ctx, userID, communityID)
}

func noopMembershipRepo() *membershipRepoStub {
	return &membershipRepoStub{
		joinFn:     func(_ context.Context, _, _ uuid.UUID) (int64, error) { return 1, nil },
		leaveFn:    func(_ context.Context, _, _ uuid.UUID) (int64, error) { return 0, nil },
		isMemberFn: func(_ context.Context, _, _ uuid.UUID) (bool, error) { return true, nil },
	}
}

// challengeRepoStub is a stub for repository.ChallengeRepository.
type challengeRepoStub struct {
	createFn        func(context.Context, *models.Challenge) error
	getByIDFn       func(context.Context, uuid.UUID) (*models.Challenge, error)
	listUnexpiredFn func(context.Context) ([]*models.Challenge, error)
	updateStatusFn  func(context.Context, uuid.UUID, models.ChallengeStatus) (bool, error)
}

func (s *challengeRepoStub) Create(ctx context.Context, c *models.Challenge) error {
	return s.createFn(ctx, c)
}
func (s *challengeRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*models.Challenge, error) {
	return s.getByIDFn(ctx, id)
}
func (s *challengeRepoStub) ListActive(_ context.Context, _ time.Time, _, _ int) ([]*models.Challenge, error) {
	return nil, nil
}
func (s *challengeRepoStub) ListByCommunity(_ context.Context, _ uuid.UUID, _, _ int) ([]*models.Challenge, error) {
	return nil, nil
}
func (s *challengeRepoStub) ListUnexpired(ctx context.Context) ([]*models.Challenge, error) {
	return s.listUnexpiredFn(ctx)
}
func (s *challengeRepoStub) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ChallengeStatus) (bool, error) {
	return s.updateStatusFn(ctx, id, status)
}

func noopChallengeRepo() *challengeRepoStub {
	return &challengeRepoStub{
		createFn:        func(_ context.Context, _ *models.Challenge) error { return nil },
		getByIDFn:       func(_ context.Context, id uuid.UUID) (*models.Challenge, error) { return &models.Challenge{ID: id}, nil },
		listUnexpiredFn: func(_ context.Context) ([]*models.Challenge, error) { return nil, nil },
		updateStatusFn:  func(_ context.Context, _ uuid.UUID, _ models.ChallengeStatus) (bool, error) { return true, nil },
	}
}

// reputationRepoStub is a stub for repository.ReputationRepository.
type reputationRepoStub struct {
	awardFn func(context.Context, *models.ReputationEntry) (int64, error)
}

func (s *reputationRepoStub) Award(ctx context.Context, e *models.ReputationEntry) (int64, error) {
	return s.awardFn(ctx, e)
}
func (s *reputationRepoStub) History(_ context.Context, _ uuid.UUID, _, _ int) ([]*models.ReputationEntry, error) {
	return nil, nil
}
func (s *reputationRepoStub) Total(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}

// notificationRepoStub is a stub for repository.NotificationRepository.
type notificationRepoStub struct {
	created []*models.Notification
}

func (s *notificationRepoStub) Create(_ context.Context, n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	s.created = append(s.created, n)
	return nil
}
func (s *notificationRepoStub) ListForUser(_ context.Context, _ uuid.UUID) ([]*models.Notification, error) {
	return s.created, nil
}
func (s *notificationRepoStub) MarkRead(_ context.Context, _, _ uuid.UUID) error { return nil }
func (s *notificationRepoStub) MarkAllRead(_ context.Context, _ uuid.UUID) (int64, error) {
	return int64(len(s.created)), nil
}
func (s *notificationRepoStub) UnreadCount(_ context.Context, _ uuid.UUID) (int64, error) {
	return int64(len(s.created)), nil
}
