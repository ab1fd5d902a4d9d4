package models

import "time"

type NotificationType string

const (
	NotificationInvitationAccepted NotificationType = "invitation_accepted"
	NotificationMembershipGranted  NotificationType = "membership_granted"
	NotificationRoleChanged        NotificationType = "role_changed"
	NotificationMembershipRevoked  NotificationType = "membership_revoked"
	NotificationTaskAssigned       NotificationType = "task_assigned"
	NotificationTaskStatusChanged  NotificationType = "task_status_changed"
	NotificationTaskResponse       NotificationType = "task_response"
	NotificationTeamMemberAdded    NotificationType = "team_member_added"
)

// Notification is a per-user feed entry. Dismissing hard-deletes the
// row; marking read is idempotent.
type Notification struct {
	ID        uint64           `gorm:"primarykey" json:"id"`
	UserID    uint64           `gorm:"not null;index" json:"user_id"`
	Type      NotificationType `gorm:"type:varchar(40);not null" json:"type"`
	Title     string           `gorm:"type:varchar(255);not null" json:"title"`
	Message   string           `gorm:"type:text" json:"message"`
	Payload   string           `gorm:"type:text" json:"payload,omitempty"`
	ExpiresAt *time.Time       `json:"expires_at"`
	ReadAt    *time.Time       `json:"read_at"`
	CreatedAt time.Time        `json:"created_at"`
}
