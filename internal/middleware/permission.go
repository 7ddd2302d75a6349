package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/permissions"
)

// RequirePermission runs the request-level check of perm for the current
// principal and method before the handler.
func RequirePermission(perm permissions.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := permissions.Check(perm, PrincipalFrom(c), c.Request.Method); err != nil {
			status, apiErr := PermissionError(err)
			c.AbortWithStatusJSON(status, apiErr)
			return
		}
		c.Next()
	}
}

// PermissionError maps a denial from the permissions package to its HTTP
// status and body. Anonymous callers get 401, authenticated ones 403.
func PermissionError(err error) (int, models.APIError) {
	if errors.Is(err, permissions.ErrNotAuthenticated) {
		return http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "Authentication credentials were not provided.")
	}
	return http.StatusForbidden, models.NewAPIError(models.ErrForbidden, "You do not have permission to perform this action.")
}
