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

// RequireOrganizationAccess loads the organization named by the :id
// parameter and checks that it is the caller's organization. Other
// organizations are reported as missing so their existence does not leak.
func RequireOrganizationAccess(orgs *services.OrganizationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid organization ID")
			return
		}

		claims, ok := GetClaims(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}

		org, err := orgs.Get(c.Request.Context(), orgID)
		if err != nil {
			if errors.Is(err, services.ErrOrganizationNotFound) {
				apierrors.NotFound(c, "Organization not found")
				return
			}
			logging.LogError("organization_access", err, logrus.Fields{"organization_id": orgID})
			apierrors.InternalError(c, "")
			return
		}

		if !claims.HasOrganization() || *claims.OrganizationID != org.ID {
			apierrors.NotFound(c, "Organization not found")
			return
		}

		c.Set(constants.ContextKeyOrganization, org)
		c.Next()
	}
}

// RequireOrganizationAdmin checks the caller's stored role, so an admin
// demoted since their credential was issued is refused. It must run after
// RequireOrganizationAccess.
func RequireOrganizationAdmin(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		org, ok := GetOrganization(c)
		if !ok {
			apierrors.Forbidden(c, "Organization access required")
			return
		}
		userID, _ := GetUserID(c)

		user, err := users.Get(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				apierrors.Forbidden(c, "")
				return
			}
			logging.LogError("organization_admin_check", err, logrus.Fields{"user_id": userID})
			apierrors.InternalError(c, "")
			return
		}

		if user.Role != models.RoleAdmin || user.OrganizationID == nil || *user.OrganizationID != org.ID {
			apierrors.Forbidden(c, "Only organization admins can perform this action")
			return
		}
		c.Next()
	}
}

func GetOrganization(c *gin.Context) (*models.Organization, bool) {
	v, exists := c.Get(constants.ContextKeyOrganization)
	if !exists {
		return nil, false
	}
	org, ok := v.(*models.Organization)
	return org, ok
}
