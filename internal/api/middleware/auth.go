package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/devprosvn/devpros-achievo/internal/db/models"
	"github.com/devprosvn/devpros-achievo/internal/services"
)

// Context keys set by RequireAuth.
const (
	ContextWallet = "wallet"
	ContextRole   = "role"
)

type AuthMiddleware struct {
	auth  *services.AuthService
	roles *services.RoleService
}

func NewAuthMiddleware(auth *services.AuthService, roles *services.RoleService) *AuthMiddleware {
	return &AuthMiddleware{
		auth:  auth,
		roles: roles,
	}
}

// RequireAuth validates the bearer token and injects the caller's wallet
// and role. The role is re-derived from storage on every request; the
// token's embedded role is never trusted after issuance.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := am.auth.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			return
		}

		role, err := am.roles.RoleOf(c.Request.Context(), claims.WalletAddress)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "could not resolve caller role"})
			return
		}

		c.Set(ContextWallet, claims.WalletAddress)
		c.Set(ContextRole, role)
		c.Next()
	}
}

// RequireRole gates a route on a minimum role. Must run after
// RequireAuth.
func (am *AuthMiddleware) RequireRole(required models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(ContextRole)
		if !ok || !role.(models.Role).AtLeast(required) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "requires role " + string(required) + " or above",
			})
			return
		}
		c.Next()
	}
}
