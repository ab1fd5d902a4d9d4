package models

import "time"

// PasswordResetRequest is an ephemeral single-use token issued by an
// admin on behalf of a user. Consuming sets UsedAt and invalidates
// further use.
type PasswordResetRequest struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	UserID      uint64     `gorm:"not null;index" json:"user_id"`
	RequesterID uint64     `gorm:"not null" json:"requester_id"`
	CompanyID   uint64     `gorm:"not null" json:"company_id"`
	Token       string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	ExpiresAt   time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt      *time.Time `json:"used_at"`
	CreatedAt   time.Time  `json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// IsValid reports whether the token can still be consumed.
func (p *PasswordResetRequest) IsValid(now time.Time) bool {
	return p.UsedAt == nil && p.ExpiresAt.After(now)
}
