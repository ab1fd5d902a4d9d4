package models

import (
	"time"

	"gorm.io/gorm"
)

type Team struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	CompanyID   uint64         `gorm:"not null;index" json:"company_id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`
	CreatorID   uint64         `gorm:"not null" json:"creator_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Company Company          `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Creator User             `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Members []TeamMembership `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}
