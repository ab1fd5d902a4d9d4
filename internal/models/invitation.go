package models

import "time"

// Invitation is a time-bounded offer of company (and optionally team)
// membership at a given role. Cancelling deletes the row; expiry is
// implicit via ExpiresAt, never stored as a state.
type Invitation struct {
	ID         uint64     `gorm:"primarykey" json:"id"`
	Email      string     `gorm:"type:varchar(255);not null;index" json:"email"`
	CompanyID  uint64     `gorm:"not null;index" json:"company_id"`
	TeamID     *uint64    `gorm:"index" json:"team_id"`
	Role       Role       `gorm:"type:varchar(20);not null" json:"role"`
	InviterID  uint64     `gorm:"not null" json:"inviter_id"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `gorm:"not null;index" json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at"`

	// Relations
	Company Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Inviter User    `gorm:"foreignKey:InviterID" json:"inviter,omitempty"`
}

// IsPending reports whether the invitation is still open: not yet
// accepted and not past its expiry.
func (i *Invitation) IsPending(now time.Time) bool {
	return i.AcceptedAt == nil && i.ExpiresAt.After(now)
}
