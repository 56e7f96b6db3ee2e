package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/serialpm/serialpm-api/internal/dto"
	apierrors "github.com/serialpm/serialpm-api/internal/errors"
	"github.com/serialpm/serialpm-api/internal/middleware"
	"github.com/serialpm/serialpm-api/internal/services"
	"github.com/serialpm/serialpm-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// ListTasks returns the tasks of the caller's organization, optionally
// narrowed by project_id and a comma-separated tags list.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	input := services.ListTasksInput{
		OrganizationID: currentOrganizationID(c),
		Tags:           c.Query("tags"),
		Page:           utils.GetPaginationParams(c),
	}
	if raw := c.Query("project_id"); raw != "" {
		projectID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project_id")
			return
		}
		input.ProjectID = &projectID
	}

	tasks, total, err := h.taskService.List(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, "list_tasks", err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskListResponse{
		Tasks: dto.ToTaskDTOs(tasks),
		Pagination: utils.PaginationResponse{
			Page:  input.Page.Page,
			Limit: input.Page.Limit,
			Total: total,
		},
	})
}

// GetTask returns the task loaded by RequireTaskAccess.
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), services.CreateTaskInput{
		OrganizationID: currentOrganizationID(c),
		Title:          req.Title,
		Description:    req.Description,
		Priority:       req.Priority,
		DueDate:        req.DueDate,
		ProjectID:      req.ProjectID.Uint64(),
		AssignedUserID: optionalID(req.AssignedUser),
		Tags:           req.Tags,
		Status:         req.Status,
	})
	if err != nil {
		respondServiceError(c, "create_task", err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	updated, err := h.taskService.Update(c.Request.Context(), currentOrganizationID(c), task.ID, services.UpdateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Priority:       req.Priority,
		DueDate:        req.DueDate,
		AssignedUserID: optionalID(req.AssignedUser),
		Tags:           req.Tags,
		Status:         req.Status,
	})
	if err != nil {
		respondServiceError(c, "update_task", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	var req dto.UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	updated, err := h.taskService.UpdateStatus(c.Request.Context(), task.ID, req.Status)
	if err != nil {
		respondServiceError(c, "update_task_status", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), task.ID); err != nil {
		respondServiceError(c, "delete_task", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Task deleted successfully"})
}

func optionalID(id *utils.FlexibleID) *uint64 {
	if id == nil {
		return nil
	}
	v := id.Uint64()
	return &v
}
