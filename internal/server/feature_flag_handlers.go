package server

import (
	"circle/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags lists the configured flags and how each evaluates for the caller.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	return c.JSON(fiber.Map{
		"flags":     s.featureFlags.Names(),
		"evaluated": s.featureFlags.Snapshot(userID.String()),
	})
}
