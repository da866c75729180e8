package middleware

import (
	"net/http"
	"strings"

	"igire/backend/internal/auth"
	"igire/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	KeyUserID        = "user_id"
	KeyRole          = "role"
	KeyInstitutionID = "institution_id"

	// TokenCookie carries the bearer token for browser clients.
	TokenCookie = "auth_token"
)

// Verifier checks bearer tokens.
type Verifier interface {
	Verify(token string) (*auth.Identity, error)
}

// AuthMiddleware accepts a Bearer header, the auth_token cookie or, for
// websocket upgrades, a token query parameter.
func AuthMiddleware(tokens Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
			return
		}

		id, err := tokens.Verify(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(KeyUserID, id.UserID)
		c.Set(KeyRole, id.Role)
		c.Set(KeyInstitutionID, id.InstitutionID)
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := Role(c)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	}
}

func UserID(c *gin.Context) string { return c.GetString(KeyUserID) }

func InstitutionID(c *gin.Context) string { return c.GetString(KeyInstitutionID) }

func Role(c *gin.Context) models.Role {
	if v, ok := c.Get(KeyRole); ok {
		if r, ok := v.(models.Role); ok {
			return r
		}
	}
	return ""
}

func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return ""
		}
		return strings.TrimSpace(parts[1])
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	if websocketUpgrade(c.Request) {
		return c.Query("token")
	}
	return ""
}

func websocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}
