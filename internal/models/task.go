package models

import (
	"time"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Task status is free-form; clients treat TaskStatusCompleted as done.
const (
	TaskStatusPending   = "Pending"
	TaskStatusCompleted = "Completed"
)

type Task struct {
	ID             uint64       `gorm:"primarykey" json:"id"`
	Title          string       `gorm:"type:varchar(255);not null" json:"title"`
	Description    string       `gorm:"type:text" json:"description"`
	Priority       TaskPriority `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	DueDate        *time.Time   `json:"due_date"`
	ProjectID      uint64       `gorm:"index;not null" json:"project_id"`
	AssignedUserID *uint64      `gorm:"index" json:"assigned_user"`
	Tags           string       `gorm:"type:varchar(500)" json:"tags"`
	Status         string       `gorm:"type:varchar(50);not null;default:'Pending'" json:"status"`
	CreatedAt      time.Time    `json:"created_date"`
	UpdatedAt      time.Time    `json:"updated_date"`

	// Relations
	Project      Project `gorm:"foreignKey:ProjectID" json:"-"`
	AssignedUser *User   `gorm:"foreignKey:AssignedUserID" json:"-"`
}
