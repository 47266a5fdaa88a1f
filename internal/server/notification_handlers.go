package server

import (
	"circle/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetMyNotifications handles GET /api/me/notifications
func (s *Server) GetMyNotifications(c *fiber.Ctx) error {
	list, err := s.notifications.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// GetUnreadCount handles GET /api/me/notifications/unread-count
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	count, err := s.notifications.UnreadCount(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"unread": count})
}

// MarkNotificationRead handles POST /api/me/notifications/:id/read
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id", "Notification")
	if err != nil {
		return respondError(c, err)
	}
	if err := s.notifications.MarkRead(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkAllNotificationsRead handles POST /api/me/notifications/read-all
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	updated, err := s.notifications.MarkAllRead(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"updated": updated})
}
