package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/serialpm/serialpm-api/internal/dto"
	apierrors "github.com/serialpm/serialpm-api/internal/errors"
	"github.com/serialpm/serialpm-api/internal/middleware"
	"github.com/serialpm/serialpm-api/internal/services"
	"github.com/serialpm/serialpm-api/internal/utils"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	taskService    *services.TaskService
}

func NewProjectHandler(projectService *services.ProjectService, taskService *services.TaskService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		taskService:    taskService,
	}
}

func (h *ProjectHandler) ListProjects(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	projects, total, err := h.projectService.List(c.Request.Context(), currentOrganizationID(c), params)
	if err != nil {
		respondServiceError(c, "list_projects", err)
		return
	}

	c.JSON(http.StatusOK, dto.ProjectListResponse{
		Projects: dto.ToProjectDTOs(projects),
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// SearchProjects matches q against project fields and owner names.
func (h *ProjectHandler) SearchProjects(c *gin.Context) {
	projects, err := h.projectService.Search(c.Request.Context(), currentOrganizationID(c), c.Query("q"))
	if err != nil {
		respondServiceError(c, "search_projects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": dto.ToProjectDTOs(projects)})
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	input := services.CreateProjectInput{
		OrganizationID: currentOrganizationID(c),
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Budget:         req.Budget,
		Milestones:     req.Milestones,
	}
	if req.OwnerID != nil {
		id := req.OwnerID.Uint64()
		input.OwnerID = &id
	}

	project, err := h.projectService.Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, "create_project", err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// GetProject returns the project loaded by RequireProjectAccess.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	input := services.UpdateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Budget:      req.Budget,
		Milestones:  req.Milestones,
	}
	if req.OwnerID != nil {
		id := req.OwnerID.Uint64()
		input.OwnerID = &id
	}

	updated, err := h.projectService.Update(c.Request.Context(), project.ID, input)
	if err != nil {
		respondServiceError(c, "update_project", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectDTO(*updated))
}

// GenerateTasks drafts tasks for the project from free text.
func (h *ProjectHandler) GenerateTasks(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	var req dto.GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	tasks, err := h.taskService.GenerateTasks(c.Request.Context(), project.OrganizationID, project.ID, req.Text)
	if err != nil {
		respondServiceError(c, "generate_tasks", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}
