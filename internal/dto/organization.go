package dto

import (
	"time"

	"github.com/serialpm/serialpm-api/internal/models"
	"github.com/serialpm/serialpm-api/internal/utils"
)

// OnboardRequest is the body of POST /api/orgs/signup. Field rules are
// enforced by the organization service.
type OnboardRequest struct {
	Name       string           `json:"name"`
	AdminName  string           `json:"admin_name"`
	AdminEmail string           `json:"admin_email"`
	UserID     utils.FlexibleID `json:"user_id"`
	City       string           `json:"city"`
	State      string           `json:"state"`
	Zip        string           `json:"zip"`
	Country    string           `json:"country"`
}

type OnboardResponse struct {
	Message        string `json:"message"`
	OrganizationID uint64 `json:"organization_id"`
	InviteKey      string `json:"invite_key"`
	Token          string `json:"token"`
}

type JoinRequest struct {
	InviteKey string           `json:"invite_key" binding:"required"`
	UserID    utils.FlexibleID `json:"user_id" binding:"required"`
}

type OrganizationSummaryDTO struct {
	OrganizationID uint64 `json:"organization_id"`
	Name           string `json:"name"`
}

type JoinResponse struct {
	Message      string                 `json:"message"`
	Organization OrganizationSummaryDTO `json:"organization"`
	Token        string                 `json:"token"`
}

type UpdateOrganizationRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// OrganizationDTO represents an organization in API responses
type OrganizationDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AdminName   string    `json:"admin_name"`
	AdminEmail  string    `json:"admin_email"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Zip         string    `json:"zip"`
	Country     string    `json:"country"`
	AdminID     uint64    `json:"admin_id"`
	InviteKey   string    `json:"invite_key,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type OrganizationListResponse struct {
	Organizations []OrganizationDTO        `json:"organizations"`
	Pagination    utils.PaginationResponse `json:"pagination"`
}

// ToOrganizationDTO converts an Organization model. The invite key is only
// shown to members of the organization.
func ToOrganizationDTO(org models.Organization, includeInviteKey bool) OrganizationDTO {
	dto := OrganizationDTO{
		ID:          org.ID,
		Name:        org.Name,
		Title:       org.Title,
		Description: org.Description,
		AdminName:   org.AdminName,
		AdminEmail:  org.AdminEmail,
		City:        org.City,
		State:       org.State,
		Zip:         org.Zip,
		Country:     org.Country,
		AdminID:     org.AdminID,
		CreatedAt:   org.CreatedAt,
	}
	if includeInviteKey {
		dto.InviteKey = org.InviteKey
	}
	return dto
}
