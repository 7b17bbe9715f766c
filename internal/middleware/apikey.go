package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/guestdesk/backend/pkg/response"
)

// HeaderAPIKey is the request header carrying the shared API key.
const HeaderAPIKey = "API-KEY"

// APIKey rejects requests whose API-KEY header does not match key. An empty key disables the check.
func APIKey(key string) gin.HandlerFunc {
	expected := []byte(key)
	return func(c *gin.Context) {
		if len(expected) == 0 {
			c.Next()
			return
		}
		got := []byte(c.GetHeader(HeaderAPIKey))
		if subtle.ConstantTimeCompare(got, expected) != 1 {
			response.Unauthorized(c, "Invalid API Key")
			c.Abort()
			return
		}
		c.Next()
	}
}
