package models

import "time"

// TeamMembership links a user to a team. The leader flag is orthogonal to
// the user's company-level role.
type TeamMembership struct {
	TeamID    uint64    `gorm:"primarykey" json:"team_id"`
	UserID    uint64    `gorm:"primarykey" json:"user_id"`
	IsLeader  bool      `gorm:"not null;default:false" json:"is_leader"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Team Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
