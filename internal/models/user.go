package models

import (
	"time"
)

type UserRole string

const (
	RoleClient     UserRole = "client"
	RoleTeamMember UserRole = "team_member"
	RoleAdmin      UserRole = "admin"
)

const AccountStatusActive = "active"

type User struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash   string    `gorm:"type:varchar(255);not null" json:"-"`
	Role           UserRole  `gorm:"type:varchar(20);not null;default:'client'" json:"role"`
	AccountStatus  string    `gorm:"type:varchar(20);not null;default:'active'" json:"account_status"`
	OrganizationID *uint64   `gorm:"index" json:"organization_id"`
	ProfilePicture *string   `gorm:"type:varchar(255)" json:"profile_picture"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
