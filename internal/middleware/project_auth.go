package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/serialpm/serialpm-api/internal/constants"
	apierrors "github.com/serialpm/serialpm-api/internal/errors"
	"github.com/serialpm/serialpm-api/internal/logging"
	"github.com/serialpm/serialpm-api/internal/models"
	"github.com/serialpm/serialpm-api/internal/services"
	"github.com/sirupsen/logrus"
)

// RequireProjectAccess loads the project named by the :id parameter. It
// must run after RequireOrganization; projects of other organizations are
// reported as missing.
func RequireProjectAccess(projects *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project ID")
			return
		}
		orgID, _ := GetOrganizationID(c)

		project, err := projects.Get(c.Request.Context(), projectID)
		if err != nil {
			if errors.Is(err, services.ErrProjectNotFound) {
				apierrors.NotFound(c, "Project not found")
				return
			}
			logging.LogError("project_access", err, logrus.Fields{"project_id": projectID})
			apierrors.InternalError(c, "")
			return
		}
		if project.OrganizationID != orgID {
			apierrors.NotFound(c, "Project not found")
			return
		}

		c.Set(constants.ContextKeyProject, project)
		c.Next()
	}
}

func GetProject(c *gin.Context) (*models.Project, bool) {
	v, exists := c.Get(constants.ContextKeyProject)
	if !exists {
		return nil, false
	}
	project, ok := v.(*models.Project)
	return project, ok
}
