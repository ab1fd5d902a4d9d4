package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/harukimoto/teamtrack-api/internal/constants"
	"github.com/harukimoto/teamtrack-api/internal/models"
	"github.com/harukimoto/teamtrack-api/internal/repository"
)

// NotificationService manages the per-user notification feed and acts as
// the dispatch sink for lifecycle events raised by the other services.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
	}
}

// Fetch returns the user's unexpired notifications, newest first, capped
// at the feed limit.
func (s *NotificationService) Fetch(userID uint64) ([]models.Notification, error) {
	notifications, err := s.notificationRepo.ListActive(userID, time.Now(), constants.NotificationFeedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead marks a single notification read. Re-marking an already read
// notification is a no-op, not an error.
func (s *NotificationService) MarkRead(id, userID uint64) error {
	if err := s.notificationRepo.MarkRead(id, userID, time.Now()); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead marks every unread notification of the user read. Idempotent.
func (s *NotificationService) MarkAllRead(userID uint64) error {
	if err := s.notificationRepo.MarkAllRead(userID, time.Now()); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

// Dismiss hard-deletes a notification from the user's feed.
func (s *NotificationService) Dismiss(id, userID uint64) error {
	if err := s.notificationRepo.Delete(id, userID); err != nil {
		return fmt.Errorf("failed to dismiss notification: %w", err)
	}
	return nil
}

// Dispatch inserts a feed entry for a lifecycle event. Delivery is
// best-effort: the primary mutation has already committed, so failures
// are logged and swallowed.
func (s *NotificationService) Dispatch(userID uint64, notificationType models.NotificationType, title, message string, payload any) {
	notification := &models.Notification{
		UserID:  userID,
		Type:    notificationType,
		Title:   title,
		Message: message,
	}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Printf("notification payload for user %d dropped: %v", userID, err)
		} else {
			notification.Payload = string(data)
		}
	}

	if err := s.notificationRepo.Create(notification); err != nil {
		log.Printf("failed to deliver notification to user %d: %v", userID, err)
	}
}
