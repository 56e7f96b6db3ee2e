package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/serialpm/serialpm-api/internal/auth"
	"github.com/serialpm/serialpm-api/internal/constants"
	apierrors "github.com/serialpm/serialpm-api/internal/errors"
)

// RequireAuth verifies the bearer credential. A missing or malformed
// Authorization header is rejected with 401, a credential that fails
// verification with 403.
func RequireAuth(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			apierrors.Unauthorized(c, "Access token required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			apierrors.Unauthorized(c, "Authorization header must be: Bearer <token>")
			return
		}

		claims, err := issuer.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				apierrors.InvalidToken(c, "Token expired")
				return
			}
			apierrors.InvalidToken(c, "")
			return
		}

		c.Set(constants.ContextKeyUserID, claims.ID)
		c.Set(constants.ContextKeyClaims, claims)
		c.Next()
	}
}

// RequireOrganization rejects callers whose credential carries no
// organization. It must run after RequireAuth.
func RequireOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}
		if !claims.HasOrganization() {
			apierrors.NoOrganization(c)
			return
		}

		c.Set(constants.ContextKeyOrganizationID, *claims.OrganizationID)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}

// GetClaims retrieves the verified credential from context
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	v, exists := c.Get(constants.ContextKeyClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// GetOrganizationID retrieves the caller's organization set by
// RequireOrganization.
func GetOrganizationID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get(constants.ContextKeyOrganizationID)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
