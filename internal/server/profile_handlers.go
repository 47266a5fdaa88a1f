package server

import (
	"circle/internal/middleware"
	"circle/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMe handles GET /api/me. The profile is created on the first call.
func (s *Server) GetMe(c *fiber.Ctx) error {
	profile, err := s.profiles.Ensure(c.UserContext(), middleware.UserID(c), middleware.UserHint(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// UpdateMe handles PATCH /api/me
func (s *Server) UpdateMe(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := middleware.UserID(c)

	var req struct {
		Username  *string `json:"username"`
		FullName  *string `json:"full_name"`
		Bio       *string `json:"bio"`
		AvatarURL *string `json:"avatar_url"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	if _, err := s.profiles.Ensure(ctx, userID, middleware.UserHint(c)); err != nil {
		return respondError(c, err)
	}
	profile, err := s.profiles.Update(ctx, userID, service.UpdateProfileInput{
		Username:  req.Username,
		FullName:  req.FullName,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// GetMyReputation handles GET /api/me/reputation
func (s *Server) GetMyReputation(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := middleware.UserID(c)
	page := parsePagination(c, 20)

	total, err := s.reputation.Total(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	history, err := s.reputation.History(ctx, userID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":   total,
		"history": history,
	})
}

// GetMyBadges handles GET /api/me/badges
func (s *Server) GetMyBadges(c *fiber.Ctx) error {
	badges, err := s.badges.ListForUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(badges)
}

// GetBadges handles GET /api/badges
func (s *Server) GetBadges(c *fiber.Ctx) error {
	badges, err := s.badges.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(badges)
}

// GetMySubmissions handles GET /api/me/submissions
func (s *Server) GetMySubmissions(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	subs, err := s.submissions.ListForUser(c.UserContext(), middleware.UserID(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(subs)
}

// GetUserByUsername handles GET /api/users/:username
func (s *Server) GetUserByUsername(c *fiber.Ctx) error {
	ctx := c.UserContext()
	profile, err := s.profiles.GetByUsername(ctx, c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	badges, err := s.badges.ListForUser(ctx, profile.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"profile": profile,
		"badges":  badges,
	})
}
