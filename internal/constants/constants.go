package constants

import "time"

// Session
const (
	SessionCookieName = "teamtrack_session"
	ContextKeyUserID  = "user_id"
)

// Validation limits
const (
	MinPasswordLength = 8
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Lifecycle windows
const (
	InvitationValidity    = 7 * 24 * time.Hour
	PasswordResetValidity = time.Hour
)

// Notification feed
const (
	NotificationFeedLimit = 50
)

// User search quiescence window
const (
	SearchDebounceInterval = 300 * time.Millisecond
)
