package models

import (
	"time"
)

// Organization is a tenant. InviteKey is generated once at onboarding and
// never rotated.
type Organization struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Title       string    `gorm:"type:varchar(255)" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	AdminName   string    `gorm:"type:varchar(255);not null" json:"admin_name"`
	AdminEmail  string    `gorm:"type:varchar(255);not null" json:"admin_email"`
	City        string    `gorm:"type:varchar(100);not null" json:"city"`
	State       string    `gorm:"type:varchar(100);not null" json:"state"`
	Zip         string    `gorm:"type:varchar(10);not null" json:"zip"`
	Country     string    `gorm:"type:varchar(100);not null" json:"country"`
	InviteKey   string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"invite_key"`
	AdminID     uint64    `gorm:"index;not null" json:"admin_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Admin   User   `gorm:"foreignKey:AdminID" json:"-"`
	Members []User `gorm:"foreignKey:OrganizationID" json:"-"`
}
