package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/raseen-shahil/Med-App-sub000/apperr"
	"github.com/raseen-shahil/Med-App-sub000/auth"
)

// ValidateToken accepts "Authorization: Bearer <jwt>" (or the raw token) and,
// for websocket upgrades, a ?token= query parameter. It stores user_id, email
// and role on the context.
func ValidateToken(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return
		}

		claims, err := issuer.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// RequireRole must run after ValidateToken.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != role {
			apperr.Respond(c, apperr.ErrForbidden)
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated subject set by ValidateToken.
func CurrentUserID(c *gin.Context) (string, bool) {
	id := c.GetString("user_id")
	return id, id != ""
}
