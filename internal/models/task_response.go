package models

import "time"

// TaskResponse is an append-only comment/update record on a task. A
// response carrying a StatusUpdate moves the parent task to that status
// in the same transaction; TimeLogged accrues onto the task's
// ActualHours additively.
type TaskResponse struct {
	ID           uint64      `gorm:"primarykey" json:"id"`
	TaskID       uint64      `gorm:"not null;index" json:"task_id"`
	AuthorID     uint64      `gorm:"not null" json:"author_id"`
	Comment      string      `gorm:"type:text" json:"comment"`
	StatusUpdate *TaskStatus `gorm:"type:varchar(20)" json:"status_update"`
	TimeLogged   float64     `gorm:"not null;default:0" json:"time_logged"`
	CreatedAt    time.Time   `json:"created_at"`

	// Relations
	Task   Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Author User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}
