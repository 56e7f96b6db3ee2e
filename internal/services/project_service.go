package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/serialpm/serialpm-api/internal/constants"
	"github.com/serialpm/serialpm-api/internal/models"
	"github.com/serialpm/serialpm-api/internal/repository"
	"github.com/serialpm/serialpm-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectTitleRequired = errors.New("project title is required")
	ErrInvalidProjectStatus = errors.New("status must be one of: active, completed, on hold")
	ErrInvalidBudget        = errors.New("budget must be a non-negative number")
	ErrInvalidDate          = errors.New("invalid date")
	ErrOwnerNotFound        = errors.New("owner is not a member of the organization")
	ErrSearchQueryRequired  = errors.New("search query is required")
)

// ProjectService handles project business logic
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

type CreateProjectInput struct {
	OrganizationID uint64
	Title          string
	Description    string
	Status         string
	StartDate      string
	EndDate        *string
	OwnerID        *uint64
	Budget         *float64
	Milestones     string
}

// Create adds a project to the caller's organization.
func (s *ProjectService) Create(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrProjectTitleRequired
	}
	status := models.ProjectStatus(strings.TrimSpace(input.Status))
	if !status.Valid() {
		return nil, ErrInvalidProjectStatus
	}
	start, err := utils.ParseDate(strings.TrimSpace(input.StartDate))
	if err != nil {
		return nil, fmt.Errorf("%w: start_date: %v", ErrInvalidDate, err)
	}
	end, err := utils.ParseOptionalDate(input.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end_date: %v", ErrInvalidDate, err)
	}
	if err := checkBudget(input.Budget); err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, input.OrganizationID, input.OwnerID); err != nil {
		return nil, err
	}

	project := &models.Project{
		Title:          title,
		Description:    input.Description,
		Status:         status,
		StartDate:      start,
		EndDate:        end,
		OwnerID:        input.OwnerID,
		Budget:         input.Budget,
		Milestones:     input.Milestones,
		OrganizationID: input.OrganizationID,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return s.Get(ctx, project.ID)
}

func (s *ProjectService) Get(ctx context.Context, id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

func (s *ProjectService) List(ctx context.Context, organizationID uint64, page utils.PaginationParams) ([]models.Project, int64, error) {
	projects, total, err := s.projectRepo.List(ctx, organizationID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

func (s *ProjectService) Search(ctx context.Context, organizationID uint64, query string) ([]models.Project, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrSearchQueryRequired
	}
	projects, err := s.projectRepo.Search(ctx, organizationID, query, constants.ProjectSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search projects: %w", err)
	}
	return projects, nil
}

// UpdateProjectInput replaces the title; nil fields are left unchanged and
// an empty end date clears it.
type UpdateProjectInput struct {
	Title       string
	Description *string
	Status      *string
	StartDate   *string
	EndDate     *string
	OwnerID     *uint64
	Budget      *float64
	Milestones  *string
}

func (s *ProjectService) Update(ctx context.Context, id uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrProjectTitleRequired
	}
	project.Title = title

	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		status := models.ProjectStatus(strings.TrimSpace(*input.Status))
		if !status.Valid() {
			return nil, ErrInvalidProjectStatus
		}
		project.Status = status
	}
	if input.StartDate != nil {
		start, err := utils.ParseDate(strings.TrimSpace(*input.StartDate))
		if err != nil {
			return nil, fmt.Errorf("%w: start_date: %v", ErrInvalidDate, err)
		}
		project.StartDate = start
	}
	if input.EndDate != nil {
		end, err := utils.ParseOptionalDate(input.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: end_date: %v", ErrInvalidDate, err)
		}
		project.EndDate = end
	}
	if input.Budget != nil {
		if err := checkBudget(input.Budget); err != nil {
			return nil, err
		}
		project.Budget = input.Budget
	}
	if input.OwnerID != nil {
		if err := s.checkOwner(ctx, project.OrganizationID, input.OwnerID); err != nil {
			return nil, err
		}
		project.OwnerID = input.OwnerID
	}
	if input.Milestones != nil {
		project.Milestones = *input.Milestones
	}
	project.UpdatedAt = time.Now()

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return s.Get(ctx, id)
}

func checkBudget(budget *float64) error {
	if budget != nil && *budget < 0 {
		return ErrInvalidBudget
	}
	return nil
}

func (s *ProjectService) checkOwner(ctx context.Context, organizationID uint64, ownerID *uint64) error {
	if ownerID == nil {
		return nil
	}
	owner, err := s.userRepo.FindByID(ctx, *ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOwnerNotFound
		}
		return fmt.Errorf("failed to find owner: %w", err)
	}
	if owner.OrganizationID == nil || *owner.OrganizationID != organizationID {
		return ErrOwnerNotFound
	}
	return nil
}
