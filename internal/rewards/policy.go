// Package rewards maps successful domain events to reputation, badges and
// notifications. Handlers call a Policy after the core operation commits.
package rewards

import (
	"context"
	"fmt"
	"log/slog"

	"circle/internal/middleware"
	"circle/internal/models"
	"circle/internal/repository"
	"circle/internal/service"

	"github.com/google/uuid"
)

// Reasons recorded in the reputation ledger.
const (
	ReasonSubmissionCreated = "submission_created"
	ReasonVoteReceived      = "vote_received"
	ReasonVoteRemoved       = "vote_removed"
)

// FirstSubmissionBadge is granted on a user's first ever submission.
const FirstSubmissionBadge = "first-submission"

// Policy reacts to committed domain events.
type Policy interface {
	OnSubmission(ctx context.Context, res *service.SubmitResult) error
	OnVote(ctx context.Context, voterID uuid.UUID, res *service.VoteResult) error
	OnUnvote(ctx context.Context, voterID uuid.UUID, res *service.VoteResult) error
}

// Points configures how much each event is worth.
type Points struct {
	Submission int64
	Vote       int64
}

// DefaultPolicy awards points for new submissions and received votes,
// grants the first-submission badge and notifies authors.
type DefaultPolicy struct {
	points        Points
	reputation    *service.ReputationService
	badges        *service.BadgeService
	notifications *service.NotificationService
	submissions   repository.SubmissionRepository
}

func NewDefaultPolicy(
	points Points,
	reputation *service.ReputationService,
	badges *service.BadgeService,
	notifications *service.NotificationService,
	submissions repository.SubmissionRepository,
) *DefaultPolicy {
	return &DefaultPolicy{
		points:        points,
		reputation:    reputation,
		badges:        badges,
		notifications: notifications,
		submissions:   submissions,
	}
}

// OnSubmission rewards only the call that created the submission.
// Resubmissions earn nothing.
func (p *DefaultPolicy) OnSubmission(ctx context.Context, res *service.SubmitResult) error {
	if res == nil || !res.Created {
		return nil
	}
	sub := res.Submission

	if p.points.Submission != 0 {
		challengeID := sub.ChallengeID
		submissionID := sub.ID
		if _, _, err := p.reputation.Award(ctx, service.AwardInput{
			UserID:              sub.UserID,
			Points:              p.points.Submission,
			Reason:              ReasonSubmissionCreated,
			RelatedSubmissionID: &submissionID,
			RelatedChallengeID:  &challengeID,
		}); err != nil {
			return err
		}
	}

	count, err := p.submissions.CountByUser(ctx, sub.UserID)
	if err != nil {
		return err
	}
	if count != 1 {
		return nil
	}
	badge, awarded, err := p.badges.Award(ctx, sub.UserID, FirstSubmissionBadge)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			middleware.Logger.WarnContext(ctx, "Badge missing from catalog", slog.String("badge", FirstSubmissionBadge))
			return nil
		}
		return err
	}
	if !awarded {
		return nil
	}
	return p.notifications.Notify(ctx, &models.Notification{
		UserID: sub.UserID,
		Kind:   models.NotificationKindBadge,
		Title:  "You earned a badge: " + badge.Name,
		Body:   badge.Description,
	})
}

// OnVote credits the submission author. Votes on one's own submission earn nothing.
func (p *DefaultPolicy) OnVote(ctx context.Context, voterID uuid.UUID, res *service.VoteResult) error {
	sub, ok := p.rewardable(voterID, res)
	if !ok {
		return nil
	}
	if err := p.award(ctx, sub, p.points.Vote, ReasonVoteReceived); err != nil {
		return err
	}

	title := "Your submission received a vote"
	if sub.Title != "" {
		title = fmt.Sprintf("%q received a vote", sub.Title)
	}
	return p.notifications.Notify(ctx, &models.Notification{
		UserID: sub.UserID,
		Kind:   models.NotificationKindVote,
		Title:  title,
		Link:   "/challenges/" + sub.ChallengeID.String(),
	})
}

// OnUnvote appends the compensating entry for a removed vote.
func (p *DefaultPolicy) OnUnvote(ctx context.Context, voterID uuid.UUID, res *service.VoteResult) error {
	sub, ok := p.rewardable(voterID, res)
	if !ok {
		return nil
	}
	return p.award(ctx, sub, -p.points.Vote, ReasonVoteRemoved)
}

func (p *DefaultPolicy) rewardable(voterID uuid.UUID, res *service.VoteResult) (*models.Submission, bool) {
	if res == nil || res.Submission == nil || p.points.Vote == 0 {
		return nil, false
	}
	if res.Submission.UserID == voterID {
		return nil, false
	}
	return res.Submission, true
}

func (p *DefaultPolicy) award(ctx context.Context, sub *models.Submission, points int64, reason string) error {
	submissionID := sub.ID
	challengeID := sub.ChallengeID
	_, _, err := p.reputation.Award(ctx, service.AwardInput{
		UserID:              sub.UserID,
		Points:              points,
		Reason:              reason,
		RelatedSubmissionID: &submissionID,
		RelatedChallengeID:  &challengeID,
	})
	return err
}

// Apply runs fn and logs its failure. Rewards never fail the request that
// triggered them.
func Apply(ctx context.Context, event string, fn func() error) {
	if err := fn(); err != nil {
		middleware.Logger.ErrorContext(ctx, "Reward policy failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}
