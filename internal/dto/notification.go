package dto

import (
	"encoding/json"
	"time"

	"github.com/harukimoto/teamtrack-api/internal/models"
)

// NotificationDTO represents a notification feed entry in API responses
type NotificationDTO struct {
	ID        uint64                  `json:"id"`
	Type      models.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Payload   json.RawMessage         `json:"payload,omitempty"`
	ExpiresAt *time.Time              `json:"expires_at"`
	ReadAt    *time.Time              `json:"read_at"`
	CreatedAt time.Time               `json:"created_at"`
}

// ToNotificationDTO converts a Notification model to NotificationDTO
func ToNotificationDTO(notification models.Notification) NotificationDTO {
	dto := NotificationDTO{
		ID:        notification.ID,
		Type:      notification.Type,
		Title:     notification.Title,
		Message:   notification.Message,
		ExpiresAt: notification.ExpiresAt,
		ReadAt:    notification.ReadAt,
		CreatedAt: notification.CreatedAt,
	}

	if notification.Payload != "" {
		dto.Payload = json.RawMessage(notification.Payload)
	}

	return dto
}

// ToNotificationDTOs converts a slice of notifications
func ToNotificationDTOs(notifications []models.Notification) []NotificationDTO {
	dtos := make([]NotificationDTO, len(notifications))
	for i, notification := range notifications {
		dtos[i] = ToNotificationDTO(notification)
	}
	return dtos
}
