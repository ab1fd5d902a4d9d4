package models

import (
	"time"

	"gorm.io/gorm"
)

// Company is the tenant boundary. Teams, tasks, and memberships are
// scoped to exactly one company.
type Company struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Domain      string         `gorm:"type:varchar(255)" json:"domain"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Memberships []Membership `gorm:"foreignKey:CompanyID" json:"members,omitempty"`
	Teams       []Team       `gorm:"foreignKey:CompanyID" json:"teams,omitempty"`
	Tasks       []Task       `gorm:"foreignKey:CompanyID" json:"tasks,omitempty"`
}
