package utils

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// BearerToken returns the token of an "Authorization: Bearer <token>" header, or "".
func BearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// StreamToken also accepts ?token= since EventSource cannot set headers.
func StreamToken(c *gin.Context) string {
	if token := BearerToken(c); token != "" {
		return token
	}
	return strings.TrimSpace(c.Query("token"))
}
