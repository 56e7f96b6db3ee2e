package models

import (
	"time"
)

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusOnHold    ProjectStatus = "on hold"
)

// Valid reports whether s is one of the known statuses. Any status may move
// to any other.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusCompleted, ProjectStatusOnHold:
		return true
	}
	return false
}

type Project struct {
	ID             uint64        `gorm:"primarykey" json:"id"`
	Title          string        `gorm:"type:varchar(255);not null" json:"title"`
	Description    string        `gorm:"type:text" json:"description"`
	Status         ProjectStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	StartDate      time.Time     `gorm:"not null" json:"start_date"`
	EndDate        *time.Time    `json:"end_date"`
	OwnerID        *uint64       `gorm:"index" json:"owner_id"`
	Budget         *float64      `json:"budget"`
	Milestones     string        `gorm:"type:text" json:"milestones"`
	OrganizationID uint64        `gorm:"index;not null" json:"organization_id"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`

	// Relations
	Owner *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}
