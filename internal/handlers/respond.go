package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	apierrors "github.com/serialpm/serialpm-api/internal/errors"
	"github.com/serialpm/serialpm-api/internal/logging"
	"github.com/serialpm/serialpm-api/internal/middleware"
	"github.com/serialpm/serialpm-api/internal/services"
	"github.com/sirupsen/logrus"
)

// respondServiceError maps service sentinels to API errors. Anything it
// does not recognise is logged with op and reported as a generic 500.
func respondServiceError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		if details := apierrors.ValidationDetails(err); details != nil {
			apierrors.BadRequestWithDetails(c, "Validation failed", details)
			return
		}
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrProjectTitleRequired),
		errors.Is(err, services.ErrInvalidProjectStatus),
		errors.Is(err, services.ErrInvalidBudget),
		errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrOwnerNotFound),
		errors.Is(err, services.ErrSearchQueryRequired),
		errors.Is(err, services.ErrTaskTitleRequired),
		errors.Is(err, services.ErrTaskStatusRequired),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrAssigneeNotFound),
		errors.Is(err, services.ErrMessageEmpty):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNoOrganization):
		apierrors.NoOrganization(c)
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c)
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, "Email already registered")
	case errors.Is(err, services.ErrInviteKeyConflict):
		apierrors.Conflict(c, "Could not allocate a unique invite key, please retry")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrOrganizationNotFound):
		apierrors.NotFound(c, "Organization not found")
	case errors.Is(err, services.ErrInvalidInviteKey):
		apierrors.NotFound(c, "Invalid invite key")
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI task generation is not configured")
	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.BadRequest(c, err.Error())
	default:
		fields := logrus.Fields{"path": c.FullPath()}
		if userID, ok := middleware.GetUserID(c); ok {
			fields["user_id"] = userID
		}
		logging.LogError(op, err, fields)
		apierrors.InternalError(c, "")
	}
}

// requireSelf rejects requests that act on behalf of a user other than the
// authenticated one.
func requireSelf(c *gin.Context, userID uint64) bool {
	current, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return false
	}
	if current != userID {
		apierrors.Forbidden(c, "You can only act on your own account")
		return false
	}
	return true
}
