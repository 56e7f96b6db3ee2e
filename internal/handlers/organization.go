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

type OrganizationHandler struct {
	orgService     *services.OrganizationService
	projectService *services.ProjectService
}

func NewOrganizationHandler(orgService *services.OrganizationService, projectService *services.ProjectService) *OrganizationHandler {
	return &OrganizationHandler{
		orgService:     orgService,
		projectService: projectService,
	}
}

// Onboard creates an organization with the caller as its admin.
func (h *OrganizationHandler) Onboard(c *gin.Context) {
	var req dto.OnboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}
	if req.UserID != 0 && !requireSelf(c, req.UserID.Uint64()) {
		return
	}

	result, err := h.orgService.Onboard(c.Request.Context(), services.OnboardInput{
		Name:       req.Name,
		AdminName:  req.AdminName,
		AdminEmail: req.AdminEmail,
		UserID:     req.UserID.Uint64(),
		City:       req.City,
		State:      req.State,
		Zip:        req.Zip,
		Country:    req.Country,
	})
	if err != nil {
		respondServiceError(c, "onboard_organization", err)
		return
	}

	c.JSON(http.StatusCreated, dto.OnboardResponse{
		Message:        "Organization created successfully",
		OrganizationID: result.Organization.ID,
		InviteKey:      result.Organization.InviteKey,
		Token:          result.Token,
	})
}

// Join moves the caller into the organization owning the invite key.
func (h *OrganizationHandler) Join(c *gin.Context) {
	var req dto.JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}
	if !requireSelf(c, req.UserID.Uint64()) {
		return
	}

	result, err := h.orgService.Join(c.Request.Context(), req.UserID.Uint64(), req.InviteKey)
	if err != nil {
		respondServiceError(c, "join_organization", err)
		return
	}

	c.JSON(http.StatusOK, dto.JoinResponse{
		Message: "Successfully joined organization",
		Organization: dto.OrganizationSummaryDTO{
			OrganizationID: result.Organization.ID,
			Name:           result.Organization.Name,
		},
		Token: result.Token,
	})
}

// ListOrganizations returns a page of organizations without invite keys.
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	orgs, total, err := h.orgService.List(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, "list_organizations", err)
		return
	}

	items := make([]dto.OrganizationDTO, len(orgs))
	for i, org := range orgs {
		items[i] = dto.ToOrganizationDTO(org, false)
	}
	c.JSON(http.StatusOK, dto.OrganizationListResponse{
		Organizations: items,
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetOrganization returns the organization loaded by RequireOrganizationAccess.
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, dto.ToOrganizationDTO(*org, true))
}

func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	var req dto.UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	updated, err := h.orgService.Update(c.Request.Context(), org.ID, services.UpdateOrganizationInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(c, "update_organization", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrganizationDTO(*updated, true))
}

// ListOrganizationProjects lists the projects of the organization in the path.
func (h *OrganizationHandler) ListOrganizationProjects(c *gin.Context) {
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}
	h.listProjects(c, org.ID)
}

// ListCurrentProjects lists the projects of the caller's organization.
func (h *OrganizationHandler) ListCurrentProjects(c *gin.Context) {
	h.listProjects(c, currentOrganizationID(c))
}

// ListCurrentMembers lists the users of the caller's organization.
func (h *OrganizationHandler) ListCurrentMembers(c *gin.Context) {
	members, err := h.orgService.Members(c.Request.Context(), currentOrganizationID(c))
	if err != nil {
		respondServiceError(c, "list_organization_members", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": dto.ToUserDTOs(members)})
}

func (h *OrganizationHandler) listProjects(c *gin.Context, orgID uint64) {
	params := utils.GetPaginationParams(c)

	projects, total, err := h.projectService.List(c.Request.Context(), orgID, params)
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
