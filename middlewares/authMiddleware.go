package middlewares

import (
	"net/http"
	"strings"

	authUtils "fixmycity-be/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by Auth for downstream handlers.
const (
	CtxSubject = "subject"
	CtxRole    = "role"
)

// Auth validates the bearer token and stores the caller's identity
// (subject, role) in the request context. Identity is derived once per
// request from the verified token, never from the request body.
func Auth(tokens *authUtils.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.Request.Header.Get("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No authorization token provided"})
			c.Abort()
			return
		}

		tokenString := authHeader
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = authHeader[7:]
		}

		claims, err := tokens.Verify(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization token"})
			c.Abort()
			return
		}

		c.Set(CtxSubject, claims.Subject)
		c.Set(CtxRole, claims.Role)

		c.Next()
	}
}

// RequireAdmin gates an endpoint on the admin role. Must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(CtxRole)
		if role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not an admin user"})
			c.Abort()
			return
		}
		c.Next()
	}
}
