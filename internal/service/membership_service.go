// Package service holds Circle's business rules on top of the repositories.
package service

import (
	"context"

	"circle/internal/models"
	"circle/internal/observability"
	"circle/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// MembershipService implements the membership ledger rules.
type MembershipService struct {
	memberships repository.MembershipRepository
	communities repository.CommunityRepository
}

func NewMembershipService(
	memberships repository.MembershipRepository,
	communities repository.CommunityRepository,
) *MembershipService {
	return &MembershipService{
		memberships: memberships,
		communities: communities,
	}
}

// Join adds userID to the community and returns the new member count.
func (s *MembershipService) Join(ctx context.Context, userID, communityID uuid.UUID) (count int64, err error) {
	ctx, end := observability.StartSpan(ctx, "membership.join",
		attribute.String("community.id", communityID.String()))
	defer func() { end(&err) }()

	if userID == uuid.Nil {
		return 0, models.NewUnauthorizedError("Sign in to join communities")
	}
	count, err = s.memberships.Join(ctx, userID, communityID)
	if err != nil {
		countRejection(err)
		return 0, err
	}
	observability.MembershipChanges.WithLabelValues("join").Inc()
	return count, nil
}

// Leave removes userID from the community and returns the new member count.
// The leader always stays a member.
func (s *MembershipService) Leave(ctx context.Context, userID, communityID uuid.UUID) (count int64, err error) {
	ctx, end := observability.StartSpan(ctx, "membership.leave",
		attribute.String("community.id", communityID.String()))
	defer func() { end(&err) }()

	if userID == uuid.Nil {
		return 0, models.NewUnauthorizedError("Sign in to leave communities")
	}
	community, err := s.communities.GetByID(ctx, communityID)
	if err != nil {
		return 0, err
	}
	if community.LeaderID == userID {
		return 0, models.NewValidationError("The community leader cannot leave the community")
	}

	count, err = s.memberships.Leave(ctx, userID, communityID)
	if err != nil {
		countRejection(err)
		return 0, err
	}
	observability.MembershipChanges.WithLabelValues("leave").Inc()
	return count, nil
}

// IsMember is a pure existence check. A nil user is never a member.
func (s *MembershipService) IsMember(ctx context.Context, userID, communityID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	return s.memberships.IsMember(ctx, userID, communityID)
}

// countRejection records business-rule rejections by code. Storage and
// internal failures are not rule rejections.
func countRejection(err error) {
	appErr, ok := asAppError(err)
	if !ok || appErr.Code == models.CodeStorage || appErr.Code == models.CodeInternal {
		return
	}
	observability.RuleRejections.WithLabelValues(appErr.Code).Inc()
}
