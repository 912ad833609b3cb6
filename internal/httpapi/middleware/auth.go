package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bookreview/internal/httpapi/service"
)

// AuthMiddleware is a Gin middleware for session-token authentication.
// The token is read from the "token" cookie first, then from the
// Authorization header, and resolved to a user through the auth service
// (signature check, blacklist check, user load).
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authentication token"})
			c.Abort()
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or revoked token"})
			c.Abort()
			return
		}

		// Set user info in context for handlers to use
		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Set("token", tokenString)

		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie("token"); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	// Expected format: "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
