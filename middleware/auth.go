package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"course-api/service"
)

const sessionKey = "session"

// SessionGate protects the admin routes. Requests without a live session get
// 401 plus the login path, mirroring the front end's redirect behavior.
func SessionGate(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := BearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "authentication required",
				"redirect": "/login",
			})
			return
		}

		claims, err := auth.Parse(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "invalid or expired session",
				"redirect": "/login",
			})
			return
		}

		c.Set(sessionKey, claims)
		c.Next()
	}
}

// BearerToken extracts the raw token from the Authorization header, empty
// when absent or malformed.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// SessionFromContext returns the claims the gate stored, or nil on public
// routes.
func SessionFromContext(c *gin.Context) *service.Claims {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*service.Claims)
	return claims
}
