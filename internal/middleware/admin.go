package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/guestdesk/backend/internal/auth"
	"github.com/guestdesk/backend/pkg/response"
)

// RequireAdmin allows only callers whose token carries is_admin. Must run after JWT.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := auth.CurrentUser(c)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		if !claims.IsAdmin {
			response.Forbidden(c, "Not enough permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
