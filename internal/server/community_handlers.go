package server

import (
	"circle/internal/middleware"
	"circle/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetCommunities handles GET /api/communities
func (s *Server) GetCommunities(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	list, err := s.communities.List(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// CreateCommunity handles POST /api/communities
func (s *Server) CreateCommunity(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		ImageURL    string `json:"image_url"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	ctx := c.UserContext()
	userID := middleware.UserID(c)
	// The leader row references the profile.
	if _, err := s.profiles.Ensure(ctx, userID, middleware.UserHint(c)); err != nil {
		return respondError(c, err)
	}
	community, err := s.communities.Create(ctx, userID, service.CreateCommunityInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(community)
}

// GetCommunity handles GET /api/communities/:id, where id may also be a slug.
func (s *Server) GetCommunity(c *fiber.Ctx) error {
	detail, err := s.communities.Detail(c.UserContext(), c.Params("id"), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

// GetMyCommunities handles GET /api/me/communities
func (s *Server) GetMyCommunities(c *fiber.Ctx) error {
	list, err := s.communities.ListForUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// GetLedCommunities handles GET /api/me/communities/led
func (s *Server) GetLedCommunities(c *fiber.Ctx) error {
	list, err := s.communities.ListLedBy(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// JoinCommunity handles POST /api/communities/:id/join
func (s *Server) JoinCommunity(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := middleware.UserID(c)

	community, err := s.communities.Get(ctx, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if _, err := s.profiles.Ensure(ctx, userID, middleware.UserHint(c)); err != nil {
		return respondError(c, err)
	}
	count, err := s.memberships.Join(ctx, userID, community.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"community_id": community.ID,
		"is_member":    true,
		"member_count": count,
	})
}

// LeaveCommunity handles POST /api/communities/:id/leave
func (s *Server) LeaveCommunity(c *fiber.Ctx) error {
	ctx := c.UserContext()

	community, err := s.communities.Get(ctx, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	count, err := s.memberships.Leave(ctx, middleware.UserID(c), community.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"community_id": community.ID,
		"is_member":    false,
		"member_count": count,
	})
}

// GetCommunityChallenges handles GET /api/communities/:id/challenges
func (s *Server) GetCommunityChallenges(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page := parsePagination(c, 20)

	community, err := s.communities.Get(ctx, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	list, err := s.challenges.ListByCommunity(ctx, community.ID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}
