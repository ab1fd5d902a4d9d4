package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusAccepted   TaskStatus = "Accepted"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
	TaskStatusRejected   TaskStatus = "Rejected"
)

type TaskPriority string

const (
	TaskPriorityLow      TaskPriority = "Low"
	TaskPriorityMedium   TaskPriority = "Medium"
	TaskPriorityHigh     TaskPriority = "High"
	TaskPriorityCritical TaskPriority = "Critical"
)

// Task is a unit of trackable work. It may be assigned to a single user
// or a single team, never both. A task with ParentTaskID set is a
// subtask; nesting is one level deep by convention.
type Task struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	Title          string         `gorm:"not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	Link           string         `gorm:"type:varchar(2048)" json:"link"`
	Status         TaskStatus     `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	Priority       TaskPriority   `gorm:"type:varchar(20);not null;default:'Medium'" json:"priority"`
	CompanyID      uint64         `gorm:"not null;index" json:"company_id"`
	CreatorID      uint64         `gorm:"not null;index" json:"creator_id"`
	AssignedUserID *uint64        `gorm:"index" json:"assigned_user_id"`
	AssignedTeamID *uint64        `gorm:"index" json:"assigned_team_id"`
	ParentTaskID   *uint64        `gorm:"index" json:"parent_task_id"`
	DueDate        *time.Time     `gorm:"index" json:"due_date"`
	EstimatedHours *float64       `json:"estimated_hours"`
	ActualHours    float64        `gorm:"not null;default:0" json:"actual_hours"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Company      Company        `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Creator      User           `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	AssignedUser *User          `gorm:"foreignKey:AssignedUserID" json:"assigned_user,omitempty"`
	AssignedTeam *Team          `gorm:"foreignKey:AssignedTeamID" json:"assigned_team,omitempty"`
	Responses    []TaskResponse `gorm:"foreignKey:TaskID" json:"responses,omitempty"`
	Subtasks     []Task         `gorm:"foreignKey:ParentTaskID" json:"subtasks,omitempty"`
}
