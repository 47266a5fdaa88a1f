package service

import (
	"context"
	"strings"

	"circle/internal/models"
	"circle/internal/repository"
	"circle/internal/validation"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type CommunityService struct {
	communities repository.CommunityRepository
	memberships repository.MembershipRepository
}

type CreateCommunityInput struct {
	Name        string
	Description string
	ImageURL    string
}

// CommunityDetail is a community plus the caller's relation to it.
type CommunityDetail struct {
	*models.Community
	IsMember bool `json:"is_member"`
	IsLeader bool `json:"is_leader"`
}

func NewCommunityService(
	communities repository.CommunityRepository,
	memberships repository.MembershipRepository,
) *CommunityService {
	return &CommunityService{
		communities: communities,
		memberships: memberships,
	}
}

// Create makes userID the leader and first member of a new community.
func (s *CommunityService) Create(ctx context.Context, userID uuid.UUID, in CreateCommunityInput) (*models.Community, error) {
	if userID == uuid.Nil {
		return nil, models.NewUnauthorizedError("Sign in to create communities")
	}
	if err := validation.ValidateCommunity(in.Name, in.Description); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	communitySlug := slug.Make(name)
	if len(communitySlug) > 48 {
		communitySlug = strings.Trim(communitySlug[:48], "-")
	}
	if err := validation.ValidateCommunitySlug(communitySlug); err != nil {
		return nil, models.NewFieldValidationError(map[string]string{
			"name": "Name cannot be used for a community URL: " + err.Error(),
		})
	}
	exists, err := s.communities.SlugExists(ctx, communitySlug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewFieldValidationError(map[string]string{
			"slug": "A community with this name already exists",
		})
	}

	community := &models.Community{
		Name:        name,
		Slug:        communitySlug,
		Description: strings.TrimSpace(in.Description),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		LeaderID:    userID,
		IsActive:    true,
	}
	if err := s.communities.Create(ctx, community); err != nil {
		return nil, err
	}
	return community, nil
}

// Get resolves ref as an id or, failing that, a slug.
func (s *CommunityService) Get(ctx context.Context, ref string) (*models.Community, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return s.communities.GetByID(ctx, id)
	}
	return s.communities.GetBySlug(ctx, strings.ToLower(ref))
}

// Detail returns the community with viewerID's membership flags.
func (s *CommunityService) Detail(ctx context.Context, ref string, viewerID uuid.UUID) (*CommunityDetail, error) {
	community, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	detail := &CommunityDetail{Community: community}
	if viewerID == uuid.Nil {
		return detail, nil
	}
	detail.IsLeader = community.LeaderID == viewerID
	detail.IsMember, err = s.memberships.IsMember(ctx, viewerID, community.ID)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// List returns active communities, largest first.
func (s *CommunityService) List(ctx context.Context, limit, offset int) ([]*models.Community, error) {
	return s.communities.List(ctx, limit, offset)
}

func (s *CommunityService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Community, error) {
	return s.communities.ListForUser(ctx, userID)
}

// ListLedBy returns the communities userID can create challenges in.
func (s *CommunityService) ListLedBy(ctx context.Context, userID uuid.UUID) ([]*models.Community, error) {
	return s.communities.ListLedBy(ctx, userID)
}
