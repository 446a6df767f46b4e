package models

import (
	"time"

	"gorm.io/gorm"
)

// Task statuses and priorities.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"

	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

// Task represents a unit of work. A nil ProjectID marks a personal task that
// only its creator can see or touch.
type Task struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ProjectID   *uint          `gorm:"index" json:"project_id"`
	Project     *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	CreatorID   uint           `gorm:"index;not null" json:"creator_id"`
	Creator     *User          `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	AssigneeID  *uint          `gorm:"index" json:"assignee_id"`
	Assignee    *User          `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	Title       string         `gorm:"size:500;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Status      string         `gorm:"size:20;default:todo;index" json:"status"`
	Priority    string         `gorm:"size:20;default:medium" json:"priority"`
	DueDate     *time.Time     `json:"due_date"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Task) TableName() string { return "tasks" }
