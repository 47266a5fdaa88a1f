package server

import (
	"log"

	"circle/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// WebsocketHandler streams the caller's notifications. Delivery needs Redis;
// without it the upgrade is refused.
func (s *Server) WebsocketHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("userID").(uuid.UUID)
		if !ok || userID == uuid.Nil {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			log.Printf("WebSocket register failed for user %s: %v", userID, err)
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if s.hub == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "notification stream unavailable")
		}
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if middleware.UserID(c) == uuid.Nil {
			return fiber.ErrUnauthorized
		}
		return upgrade(c)
	}
}
