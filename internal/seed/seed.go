// Package seed loads the badge catalog and generates demo data for
// development. Everything goes through the services so the ledgers and
// counters stay consistent.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"circle/internal/middleware"
	"circle/internal/models"
	"circle/internal/repository"
	"circle/internal/rewards"
	"circle/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Options control how much demo data Run generates.
type Options struct {
	Users       int
	Communities int
	// Seed fixes the faker sequence. Zero uses the clock.
	Seed int64
}

// Summary counts what Run created.
type Summary struct {
	Users       int
	Communities int
	Challenges  int
	Submissions int
	Votes       int
}

var youtubeIDs = []string{"dQw4w9WgXcQ", "9bZkp7q19f0", "3JZ_D3ELwOQ", "L_jWHffIx5E", "kXYiU_JCYtU"}

// Seeder writes demo data through the service layer.
type Seeder struct {
	challengeRepo repository.ChallengeRepository
	profiles      *service.ProfileService
	communities   *service.CommunityService
	memberships   *service.MembershipService
	submissions   *service.SubmissionService
	voting        *service.VotingService
	badges        *service.BadgeService
	policy        rewards.Policy
}

// NewSeeder wires a Seeder over db. Notifications are stored but not published.
func NewSeeder(db *gorm.DB, points rewards.Points) *Seeder {
	communityRepo := repository.NewCommunityRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	reputation := service.NewReputationService(repository.NewReputationRepository(db))
	badges := service.NewBadgeService(repository.NewBadgeRepository(db))
	notifications := service.NewNotificationService(repository.NewNotificationRepository(db), nil)

	return &Seeder{
		challengeRepo: challengeRepo,
		profiles:      service.NewProfileService(repository.NewProfileRepository(db)),
		communities:   service.NewCommunityService(communityRepo, membershipRepo),
		memberships:   service.NewMembershipService(membershipRepo, communityRepo),
		submissions:   service.NewSubmissionService(submissionRepo, challengeRepo, membershipRepo),
		voting: service.NewVotingService(
			repository.NewVoteRepository(db), submissionRepo, challengeRepo, membershipRepo, nil,
		),
		badges: badges,
		policy: rewards.NewDefaultPolicy(points, reputation, badges, notifications, submissionRepo),
	}
}

// SyncBadges upserts the embedded badge catalog.
func (s *Seeder) SyncBadges(ctx context.Context) error {
	catalog, err := LoadBadgeCatalog()
	if err != nil {
		return err
	}
	if err := s.badges.SyncCatalog(ctx, catalog); err != nil {
		return fmt.Errorf("sync badge catalog: %w", err)
	}
	return nil
}

// Run syncs badges and generates users, communities with members, three
// challenges per community (expired, active, upcoming), submissions to the
// active ones and votes on them.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	gofakeit.Seed(opts.Seed)

	if err := s.SyncBadges(ctx); err != nil {
		return nil, err
	}

	sum := &Summary{}
	users := make([]*models.Profile, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		p, err := s.createUser(ctx)
		if err != nil {
			return sum, fmt.Errorf("create user %d: %w", i, err)
		}
		users = append(users, p)
	}
	sum.Users = len(users)
	if len(users) == 0 {
		return sum, nil
	}

	now := time.Now().UTC()
	for i := 0; i < opts.Communities; i++ {
		leader := users[i%len(users)]
		community, err := s.communities.Create(ctx, leader.ID, service.CreateCommunityInput{
			Name:        fmt.Sprintf("%s %s %d", title(gofakeit.Adjective()), title(gofakeit.Hobby()), i+1),
			Description: gofakeit.Sentence(12),
			ImageURL:    fmt.Sprintf("https://picsum.photos/seed/%s/600/400", gofakeit.UUID()),
		})
		if err != nil {
			return sum, fmt.Errorf("create community %d: %w", i, err)
		}
		sum.Communities++

		members := []*models.Profile{leader}
		for _, u := range users {
			if u.ID == leader.ID || gofakeit.Number(0, 9) >= 6 {
				continue
			}
			if _, err := s.memberships.Join(ctx, u.ID, community.ID); err != nil {
				return sum, fmt.Errorf("join community: %w", err)
			}
			members = append(members, u)
		}

		active, err := s.createChallenges(ctx, community, now)
		if err != nil {
			return sum, err
		}
		sum.Challenges += 3

		subs, votes, err := s.playChallenge(ctx, active, members)
		if err != nil {
			return sum, err
		}
		sum.Submissions += subs
		sum.Votes += votes
	}

	middleware.Logger.InfoContext(ctx, "Seeded demo data",
		slog.Int("users", sum.Users),
		slog.Int("communities", sum.Communities),
		slog.Int("challenges", sum.Challenges),
		slog.Int("submissions", sum.Submissions),
		slog.Int("votes", sum.Votes),
	)
	return sum, nil
}

func (s *Seeder) createUser(ctx context.Context) (*models.Profile, error) {
	p, err := s.profiles.Ensure(ctx, uuid.New(), gofakeit.Username())
	if err != nil {
		return nil, err
	}
	fullName := gofakeit.Name()
	bio := gofakeit.Sentence(10)
	avatar := fmt.Sprintf("https://i.pravatar.cc/150?u=%s", p.ID)
	return s.profiles.Update(ctx, p.ID, service.UpdateProfileInput{
		FullName:  &fullName,
		Bio:       &bio,
		AvatarURL: &avatar,
	})
}

// createChallenges inserts an expired, an active and an upcoming challenge
// and returns the active one. Past dates bypass creation validation, so the
// rows are written directly with their derived status.
func (s *Seeder) createChallenges(ctx context.Context, community *models.Community, now time.Time) (*models.Challenge, error) {
	day := 24 * time.Hour
	windows := [][2]time.Time{
		{now.Add(-10 * day), now.Add(-3 * day)},
		{now.Add(-day), now.Add(6 * day)},
		{now.Add(2 * day), now.Add(9 * day)},
	}

	var active *models.Challenge
	for _, w := range windows {
		c := &models.Challenge{
			CommunityID: community.ID,
			Title:       strings.TrimSuffix(gofakeit.Sentence(4), "."),
			Description: gofakeit.Paragraph(1, 3, 8, " "),
			StartDate:   w[0],
			EndDate:     w[1],
			CreatedBy:   community.LeaderID,
		}
		c.Status = models.DeriveStatus(c, now)
		if err := s.challengeRepo.Create(ctx, c); err != nil {
			return nil, fmt.Errorf("create challenge: %w", err)
		}
		if c.Status == models.ChallengeStatusActive {
			active = c
		}
	}
	return active, nil
}

func (s *Seeder) playChallenge(ctx context.Context, challenge *models.Challenge, members []*models.Profile) (int, int, error) {
	var subs []*models.Submission
	for _, m := range members {
		if gofakeit.Number(0, 9) >= 7 {
			continue
		}
		res, err := s.submissions.Submit(ctx, m.ID, challenge.ID, service.SubmitInput{
			Title:       strings.TrimSuffix(gofakeit.Sentence(3), "."),
			Description: gofakeit.Sentence(8),
			ContentURL:  "https://www.youtube.com/watch?v=" + youtubeIDs[gofakeit.Number(0, len(youtubeIDs)-1)],
		})
		if err != nil {
			return 0, 0, fmt.Errorf("submit: %w", err)
		}
		rewards.Apply(ctx, "submission", func() error { return s.policy.OnSubmission(ctx, res) })
		subs = append(subs, res.Submission)
	}

	votes := 0
	for _, m := range members {
		for _, sub := range subs {
			if sub.UserID == m.ID || gofakeit.Number(0, 9) >= 5 {
				continue
			}
			res, err := s.voting.Vote(ctx, m.ID, sub.ID)
			if err != nil {
				return 0, 0, fmt.Errorf("vote: %w", err)
			}
			voter := m.ID
			rewards.Apply(ctx, "vote", func() error { return s.policy.OnVote(ctx, voter, res) })
			votes++
		}
	}
	return len(subs), votes, nil
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
