package service

import (
	"errors"
	"testing"
	"time"

	"circle/internal/featureflags"
	"circle/internal/models"
	"circle/internal/repository"
	"circle/internal/testutil"

	"gorm.io/gorm"
)

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError with code %s, got %v", code, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code, err)
	}
}

func assertValidationError(t *testing.T, err error) *models.AppError {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
	var appErr *models.AppError
	_ = errors.As(err, &appErr)
	return appErr
}

// testEnv wires every service over one in-memory database with a shared,
// adjustable clock.
type testEnv struct {
	db  *gorm.DB
	now time.Time

	memberships *MembershipService
	communities *CommunityService
	challenges  *ChallengeService
	submissions *SubmissionService
	voting      *VotingService
	reputation  *ReputationService
	profiles    *ProfileService
	badges      *BadgeService
}

func newTestEnv(t *testing.T, flags string) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)

	communityRepo := repository.NewCommunityRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	env := &testEnv{
		db:  db,
		now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return env.now }

	env.memberships = NewMembershipService(membershipRepo, communityRepo)
	env.communities = NewCommunityService(communityRepo, membershipRepo)
	env.challenges = NewChallengeService(challengeRepo, communityRepo, membershipRepo)
	env.challenges.now = clock
	env.submissions = NewSubmissionService(submissionRepo, challengeRepo, membershipRepo)
	env.submissions.now = clock
	env.voting = NewVotingService(
		repository.NewVoteRepository(db), submissionRepo, challengeRepo, membershipRepo,
		featureflags.NewManager(flags),
	)
	env.reputation = NewReputationService(repository.NewReputationRepository(db))
	env.profiles = NewProfileService(repository.NewProfileRepository(db))
	env.badges = NewBadgeService(repository.NewBadgeRepository(db))
	return env
}

// scenario is a community led by leader with member joined, and an active
// challenge running from one hour before env.now for two days.
type scenario struct {
	leader    *models.Profile
	member    *models.Profile
	outsider  *models.Profile
	community *models.Community
	challenge *models.Challenge
}

func (env *testEnv) scenario(t *testing.T) *scenario {
	t.Helper()
	sc := &scenario{
		leader:   testutil.CreateProfile(t, env.db, "leader"),
		member:   testutil.CreateProfile(t, env.db, "member"),
		outsider: testutil.CreateProfile(t, env.db, "outsider"),
	}
	sc.community = testutil.CreateCommunity(t, env.db, "climbers", sc.leader)
	testutil.AddMember(t, env.db, sc.community, sc.member)
	sc.challenge = testutil.CreateChallenge(t, env.db, sc.community,
		env.now.Add(-time.Hour), env.now.Add(47*time.Hour), models.ChallengeStatusActive)
	return sc
}
