package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/serialpm/serialpm-api/internal/constants"
	"github.com/serialpm/serialpm-api/internal/logging"
	"github.com/serialpm/serialpm-api/internal/models"
	"github.com/serialpm/serialpm-api/internal/repository"
	"github.com/serialpm/serialpm-api/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTaskTitleRequired      = errors.New("title is required")
	ErrTaskStatusRequired     = errors.New("status is required")
	ErrInvalidPriority        = errors.New("priority must be one of: low, medium, high")
	ErrAssigneeNotFound       = errors.New("assigned user is not a member of the organization")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	aiService   *AIService
}

// NewTaskService creates a TaskService. aiService may be nil, in which case
// task generation is unavailable.
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository, aiService *AIService) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		aiService:   aiService,
	}
}

type ListTasksInput struct {
	OrganizationID uint64
	ProjectID      *uint64
	// Tags is a comma-separated list; a task matches when it carries any of them.
	Tags string
	Page utils.PaginationParams
}

type CreateTaskInput struct {
	OrganizationID uint64
	Title          string
	Description    string
	Priority       string
	DueDate        *string
	ProjectID      uint64
	AssignedUserID *uint64
	Tags           string
	Status         string
}

// UpdateTaskInput replaces title, priority and status. Nil fields are left
// unchanged; an empty due date clears it.
type UpdateTaskInput struct {
	Title          string
	Description    *string
	Priority       string
	DueDate        *string
	AssignedUserID *uint64
	Tags           *string
	Status         string
}

func (s *TaskService) List(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	tasks, total, err := s.taskRepo.List(ctx, repository.TaskFilter{
		OrganizationID: input.OrganizationID,
		ProjectID:      input.ProjectID,
		Tags:           utils.ParseTags(input.Tags),
		Page:           input.Page,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// Create adds a task to a project of the caller's organization.
func (s *TaskService) Create(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTaskTitleRequired
	}
	priority, err := parsePriority(input.Priority)
	if err != nil {
		return nil, err
	}
	due, err := utils.ParseOptionalDate(input.DueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: due_date: %v", ErrInvalidDate, err)
	}
	if err := s.checkProject(ctx, input.OrganizationID, input.ProjectID); err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, input.OrganizationID, input.AssignedUserID); err != nil {
		return nil, err
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = models.TaskStatusPending
	}

	task := &models.Task{
		Title:          title,
		Description:    input.Description,
		Priority:       priority,
		DueDate:        due,
		ProjectID:      input.ProjectID,
		AssignedUserID: input.AssignedUserID,
		Tags:           utils.NormalizeTags(input.Tags),
		Status:         status,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return s.Get(ctx, task.ID)
}

func (s *TaskService) Get(ctx context.Context, id uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, organizationID, id uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTaskTitleRequired
	}
	status := strings.TrimSpace(input.Status)
	if status == "" {
		return nil, ErrTaskStatusRequired
	}
	if strings.TrimSpace(input.Priority) == "" {
		return nil, ErrInvalidPriority
	}
	priority, err := parsePriority(input.Priority)
	if err != nil {
		return nil, err
	}

	task.Title = title
	task.Status = status
	task.Priority = priority
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.DueDate != nil {
		due, err := utils.ParseOptionalDate(input.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: due_date: %v", ErrInvalidDate, err)
		}
		task.DueDate = due
	}
	if input.AssignedUserID != nil {
		if err := s.checkAssignee(ctx, organizationID, input.AssignedUserID); err != nil {
			return nil, err
		}
		task.AssignedUserID = input.AssignedUserID
		task.AssignedUser = nil
	}
	if input.Tags != nil {
		task.Tags = utils.NormalizeTags(*input.Tags)
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *TaskService) UpdateStatus(ctx context.Context, id uint64, status string) (*models.Task, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, ErrTaskStatusRequired
	}
	if err := s.taskRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *TaskService) Delete(ctx context.Context, id uint64) error {
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// GenerateTasks drafts tasks from free text and adds them to the project.
func (s *TaskService) GenerateTasks(ctx context.Context, organizationID, projectID uint64, text string) ([]models.Task, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}
	if err := s.checkProject(ctx, organizationID, projectID); err != nil {
		return nil, err
	}

	drafts, err := s.aiService.GenerateTasksFromText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}
	if len(drafts) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(drafts) > constants.MaxAIGeneratedTasks {
		drafts = drafts[:constants.MaxAIGeneratedTasks]
	}

	created := make([]models.Task, 0, len(drafts))
	for _, draft := range drafts {
		title := strings.TrimSpace(draft.Title)
		if title == "" {
			continue
		}
		priority, err := parsePriority(draft.Priority)
		if err != nil {
			priority = models.TaskPriorityMedium
		}
		task := models.Task{
			Title:       title,
			Description: draft.Description,
			Priority:    priority,
			DueDate:     draft.DueDate,
			ProjectID:   projectID,
			Tags:        utils.NormalizeTags(strings.Join(draft.Tags, ",")),
			Status:      models.TaskStatusPending,
		}
		if err := s.taskRepo.Create(ctx, &task); err != nil {
			logging.LogError("ai_task_create", err, logrus.Fields{"project_id": projectID})
			continue
		}
		created = append(created, task)
	}

	if len(created) == 0 {
		return nil, ErrAINoValidTasks
	}
	return created, nil
}

func parsePriority(raw string) (models.TaskPriority, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return models.TaskPriorityMedium, nil
	}
	p := models.TaskPriority(raw)
	if !p.Valid() {
		return "", ErrInvalidPriority
	}
	return p, nil
}

func (s *TaskService) checkProject(ctx context.Context, organizationID, projectID uint64) error {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}
	if project.OrganizationID != organizationID {
		return ErrProjectNotFound
	}
	return nil
}

func (s *TaskService) checkAssignee(ctx context.Context, organizationID uint64, userID *uint64) error {
	if userID == nil {
		return nil
	}
	user, err := s.userRepo.FindByID(ctx, *userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssigneeNotFound
		}
		return fmt.Errorf("failed to find assigned user: %w", err)
	}
	if user.OrganizationID == nil || *user.OrganizationID != organizationID {
		return ErrAssigneeNotFound
	}
	return nil
}
