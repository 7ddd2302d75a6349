package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
)

// RequireRole is a middleware that checks if the user has the required role.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get user info from context (set by OAuth2Auth middleware)
		userID, exists := c.Get(UserIDKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized,
				"Authentication credentials were not provided."))
			return
		}

		role, exists := c.Get(UserRoleKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden,
				"User role not found in token"))
			return
		}

		userRole, ok := role.(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden,
				"Invalid role format"))
			return
		}

		if userRole != requiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden,
				"Insufficient permissions", map[string]interface{}{
					"required_role": requiredRole,
					"user_role":     userRole,
					"user_id":       userID,
				}))
			return
		}

		c.Next()
	}
}

// RequireStaff admits staff accounts only.
func RequireStaff() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}
