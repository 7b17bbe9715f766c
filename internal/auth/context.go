package auth

import "github.com/gin-gonic/gin"

// ContextClaims is the gin context key holding the caller's *Claims.
const ContextClaims = "auth_claims"

// CurrentUser returns the claims stored by the JWT middleware.
func CurrentUser(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok && claims != nil
}
