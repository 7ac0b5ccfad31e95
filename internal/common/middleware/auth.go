package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const bearerTokenKey = "bearer_token"

// BearerToken extracts "Authorization: Bearer <token>" into the context.
// It never rejects a request; the raffle service checks the token itself.
func BearerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
			c.Set(bearerTokenKey, strings.TrimSpace(token))
		}
		c.Next()
	}
}

// GetBearerToken returns the token captured by BearerToken, or "".
func GetBearerToken(c *gin.Context) string {
	return c.GetString(bearerTokenKey)
}
