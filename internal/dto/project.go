package dto

import (
	"time"

	"github.com/serialpm/serialpm-api/internal/models"
	"github.com/serialpm/serialpm-api/internal/utils"
)

// Dates are accepted as RFC 3339 timestamps or YYYY-MM-DD.
type CreateProjectRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	Status      string            `json:"status" binding:"required"`
	StartDate   string            `json:"start_date" binding:"required"`
	EndDate     *string           `json:"end_date"`
	OwnerID     *utils.FlexibleID `json:"owner_id"`
	Budget      *float64          `json:"budget"`
	Milestones  string            `json:"milestones"`
}

type UpdateProjectRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description *string           `json:"description"`
	Status      *string           `json:"status"`
	StartDate   *string           `json:"start_date"`
	EndDate     *string           `json:"end_date"`
	OwnerID     *utils.FlexibleID `json:"owner_id"`
	Budget      *float64          `json:"budget"`
	Milestones  *string           `json:"milestones"`
}

type GenerateTasksRequest struct {
	Text string `json:"text" binding:"required"`
}

type ProjectDTO struct {
	ID             uint64               `json:"id"`
	Title          string               `json:"title"`
	Description    string               `json:"description"`
	Status         models.ProjectStatus `json:"status"`
	StartDate      time.Time            `json:"start_date"`
	EndDate        *time.Time           `json:"end_date"`
	OwnerID        *uint64              `json:"owner_id"`
	OwnerName      *string              `json:"owner_name,omitempty"`
	Budget         *float64             `json:"budget"`
	Milestones     string               `json:"milestones"`
	OrganizationID uint64               `json:"organization_id"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

type ProjectListResponse struct {
	Projects   []ProjectDTO             `json:"projects"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

func ToProjectDTO(p models.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		Status:         p.Status,
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		OwnerID:        p.OwnerID,
		Budget:         p.Budget,
		Milestones:     p.Milestones,
		OrganizationID: p.OrganizationID,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.Owner != nil {
		dto.OwnerName = &p.Owner.Name
	}
	return dto
}

func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	result := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		result[i] = ToProjectDTO(p)
	}
	return result
}
