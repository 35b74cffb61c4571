package auth

import (
	"net/http"
	"strings"

	"arcade/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// UserEmailKey is the gin context key holding the authenticated email.
const UserEmailKey = "userEmail"

// AuthMiddleware requires a valid bearer token and stores its subject under
// UserEmailKey.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, ok := bearerSubject(c, secret)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing token"})
			return
		}
		c.Set(UserEmailKey, email)
		c.Next()
	}
}

// UserEmail returns the email set by the middleware.
func UserEmail(c *gin.Context) string {
	return c.GetString(UserEmailKey)
}

func bearerSubject(c *gin.Context, secret string) (string, bool) {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	email, err := jwt.ParseToken(parts[1], secret)
	if err != nil {
		return "", false
	}
	return email, true
}
