package service

import (
	"context"
	"log/slog"

	"circle/internal/middleware"
	"circle/internal/models"
	"circle/internal/repository"

	"github.com/google/uuid"
)

// Publisher pushes a stored notification to live subscribers.
type Publisher interface {
	PublishNotification(ctx context.Context, notification *models.Notification) error
}

type NotificationService struct {
	notifications repository.NotificationRepository
	publisher     Publisher
}

func NewNotificationService(notifications repository.NotificationRepository, publisher Publisher) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		publisher:     publisher,
	}
}

// Notify stores the notification and publishes it. A publish failure is
// logged and does not fail the call.
func (s *NotificationService) Notify(ctx context.Context, notification *models.Notification) error {
	if err := s.notifications.Create(ctx, notification); err != nil {
		return err
	}
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.PublishNotification(ctx, notification); err != nil {
		middleware.Logger.WarnContext(ctx, "Failed to publish notification",
			slog.String("notification_id", notification.ID.String()),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error) {
	return s.notifications.ListForUser(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.notifications.MarkRead(ctx, userID, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifications.MarkAllRead(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifications.UnreadCount(ctx, userID)
}
