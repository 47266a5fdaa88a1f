package server

import (
	"circle/internal/middleware"
	"circle/internal/rewards"

	"github.com/gofiber/fiber/v2"
)

// GetSubmission handles GET /api/submissions/:id
func (s *Server) GetSubmission(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id", "Submission")
	if err != nil {
		return respondError(c, err)
	}
	sub, err := s.submissions.Get(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sub)
}

// Vote handles POST /api/submissions/:id/vote
func (s *Server) Vote(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := middleware.UserID(c)
	id, err := parseUUID(c, "id", "Submission")
	if err != nil {
		return respondError(c, err)
	}

	res, err := s.voting.Vote(ctx, userID, id)
	if err != nil {
		return respondError(c, err)
	}
	rewards.Apply(ctx, "vote", func() error {
		return s.rewards.OnVote(ctx, userID, res)
	})
	return c.JSON(res.Submission)
}

// Unvote handles DELETE /api/submissions/:id/vote
func (s *Server) Unvote(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := middleware.UserID(c)
	id, err := parseUUID(c, "id", "Submission")
	if err != nil {
		return respondError(c, err)
	}

	res, err := s.voting.Unvote(ctx, userID, id)
	if err != nil {
		return respondError(c, err)
	}
	rewards.Apply(ctx, "unvote", func() error {
		return s.rewards.OnUnvote(ctx, userID, res)
	})
	return c.JSON(res.Submission)
}
