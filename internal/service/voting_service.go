package service

import (
	"context"

	"circle/internal/featureflags"
	"circle/internal/models"
	"circle/internal/observability"
	"circle/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// VotingService implements the one-vote-per-user-per-submission ledger.
// Vote counts are always read back from the ledger.
type VotingService struct {
	votes       repository.VoteRepository
	submissions repository.SubmissionRepository
	challenges  repository.ChallengeRepository
	memberships repository.MembershipRepository
	flags       *featureflags.Manager
}

// VoteResult is the submission after the vote change, with its fresh count.
type VoteResult struct {
	Submission *models.Submission
	Challenge  *models.Challenge
}

func NewVotingService(
	votes repository.VoteRepository,
	submissions repository.SubmissionRepository,
	challenges repository.ChallengeRepository,
	memberships repository.MembershipRepository,
	flags *featureflags.Manager,
) *VotingService {
	return &VotingService{
		votes:       votes,
		submissions: submissions,
		challenges:  challenges,
		memberships: memberships,
		flags:       flags,
	}
}

// Vote records userID's vote on the submission.
func (s *VotingService) Vote(ctx context.Context, userID, submissionID uuid.UUID) (res *VoteResult, err error) {
	ctx, end := observability.StartSpan(ctx, "voting.vote",
		attribute.String("submission.id", submissionID.String()))
	defer func() {
		if err != nil {
			countRejection(err)
		}
		end(&err)
	}()

	if userID == uuid.Nil {
		return nil, models.NewUnauthorizedError("Sign in to vote")
	}
	submission, err := s.submissions.GetByID(ctx, submissionID, userID)
	if err != nil {
		return nil, err
	}
	challenge, err := s.challenges.GetByID(ctx, submission.ChallengeID)
	if err != nil {
		return nil, err
	}

	member, err := s.memberships.IsMember(ctx, userID, challenge.CommunityID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, models.NewNotMemberError()
	}
	if submission.UserID == userID && s.flags.Enabled(featureflags.BlockSelfVote, userID.String()) {
		return nil, models.NewNotEligibleError("You cannot vote on your own submission")
	}

	if err := s.votes.Create(ctx, &models.Vote{SubmissionID: submissionID, UserID: userID}); err != nil {
		return nil, err
	}
	observability.VotesTotal.WithLabelValues("vote").Inc()

	return s.result(ctx, submissionID, userID, challenge)
}

// Unvote removes userID's vote from the submission.
func (s *VotingService) Unvote(ctx context.Context, userID, submissionID uuid.UUID) (res *VoteResult, err error) {
	ctx, end := observability.StartSpan(ctx, "voting.unvote",
		attribute.String("submission.id", submissionID.String()))
	defer func() {
		if err != nil {
			countRejection(err)
		}
		end(&err)
	}()

	if userID == uuid.Nil {
		return nil, models.NewUnauthorizedError("Sign in to vote")
	}
	submission, err := s.submissions.GetByID(ctx, submissionID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.votes.Delete(ctx, submissionID, userID); err != nil {
		return nil, err
	}
	observability.VotesTotal.WithLabelValues("unvote").Inc()

	challenge, err := s.challenges.GetByID(ctx, submission.ChallengeID)
	if err != nil {
		return nil, err
	}
	return s.result(ctx, submissionID, userID, challenge)
}

func (s *VotingService) result(ctx context.Context, submissionID, userID uuid.UUID, challenge *models.Challenge) (*VoteResult, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID, userID)
	if err != nil {
		return nil, err
	}
	return &VoteResult{Submission: submission, Challenge: challenge}, nil
}

// HasVoted reports whether userID has a vote on the submission.
func (s *VotingService) HasVoted(ctx context.Context, userID, submissionID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	return s.votes.Exists(ctx, submissionID, userID)
}

// Count is the number of votes in the ledger for the submission.
func (s *VotingService) Count(ctx context.Context, submissionID uuid.UUID) (int64, error) {
	return s.votes.Count(ctx, submissionID)
}
