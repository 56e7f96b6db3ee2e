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

// RequireTaskAccess checks that the task named by the :id parameter belongs
// to a project of the caller's organization. It must run after
// RequireOrganization.
func RequireTaskAccess(tasks *services.TaskService, projects *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid task ID")
			return
		}
		orgID, _ := GetOrganizationID(c)

		task, err := tasks.Get(c.Request.Context(), taskID)
		if err != nil {
			if errors.Is(err, services.ErrTaskNotFound) {
				apierrors.NotFound(c, "Task not found")
				return
			}
			logging.LogError("task_access", err, logrus.Fields{"task_id": taskID})
			apierrors.InternalError(c, "")
			return
		}

		project, err := projects.Get(c.Request.Context(), task.ProjectID)
		if err != nil && !errors.Is(err, services.ErrProjectNotFound) {
			logging.LogError("task_access", err, logrus.Fields{"task_id": taskID})
			apierrors.InternalError(c, "")
			return
		}
		// Return 404 instead of 403 to avoid leaking task existence
		if project == nil || project.OrganizationID != orgID {
			apierrors.NotFound(c, "Task not found")
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

func GetTask(c *gin.Context) (*models.Task, bool) {
	v, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return nil, false
	}
	task, ok := v.(*models.Task)
	return task, ok
}
