package models

import "time"

type Role string

const (
	RoleMember Role = "member"
	RoleLeader Role = "leader"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

// Membership grants a user a role within a company. Removal deactivates
// the row instead of deleting it so historical references stay resolvable;
// at most one active row per (user, company) pair.
type Membership struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	CompanyID uint64    `gorm:"not null;index:idx_memberships_company_user" json:"company_id"`
	UserID    uint64    `gorm:"not null;index:idx_memberships_company_user" json:"user_id"`
	Role      Role      `gorm:"type:varchar(20);not null" json:"role"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	JoinedAt  time.Time `json:"joined_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Company Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
