package dto

import (
	"time"

	"github.com/serialpm/serialpm-api/internal/models"
	"github.com/serialpm/serialpm-api/internal/utils"
)

type CreateTaskRequest struct {
	Title        string            `json:"title" binding:"required"`
	Description  string            `json:"description"`
	Priority     string            `json:"priority"`
	DueDate      *string           `json:"due_date"`
	ProjectID    utils.FlexibleID  `json:"project_id" binding:"required"`
	AssignedUser *utils.FlexibleID `json:"assigned_user"`
	Tags         string            `json:"tags"`
	Status       string            `json:"status"`
}

type UpdateTaskRequest struct {
	Title        string            `json:"title" binding:"required"`
	Description  *string           `json:"description"`
	Priority     string            `json:"priority" binding:"required"`
	DueDate      *string           `json:"due_date"`
	AssignedUser *utils.FlexibleID `json:"assigned_user"`
	Tags         *string           `json:"tags"`
	Status       string            `json:"status" binding:"required"`
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID                uint64              `json:"id"`
	Title             string              `json:"title"`
	Description       string              `json:"description"`
	Priority          models.TaskPriority `json:"priority"`
	DueDate           *time.Time          `json:"due_date"`
	ProjectID         uint64              `json:"project_id"`
	AssignedUser      *uint64             `json:"assigned_user"`
	AssignedUserName  *string             `json:"assigned_user_name,omitempty"`
	AssignedUserEmail *string             `json:"assigned_user_email,omitempty"`
	Tags              []string            `json:"tags"`
	Status            string              `json:"status"`
	CreatedDate       time.Time           `json:"created_date"`
	UpdatedDate       time.Time           `json:"updated_date"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		Priority:     task.Priority,
		DueDate:      task.DueDate,
		ProjectID:    task.ProjectID,
		AssignedUser: task.AssignedUserID,
		Tags:         utils.ParseTags(task.Tags),
		Status:       task.Status,
		CreatedDate:  task.CreatedAt,
		UpdatedDate:  task.UpdatedAt,
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}
	if task.AssignedUser != nil {
		dto.AssignedUserName = &task.AssignedUser.Name
		dto.AssignedUserEmail = &task.AssignedUser.Email
	}
	return dto
}

func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	result := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		result[i] = ToTaskDTO(t)
	}
	return result
}
