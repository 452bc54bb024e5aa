package middleware

import (
	"net/http"
	"strings"

	"go-pharma-pos/internal/auth"
	"go-pharma-pos/internal/database"
	"go-pharma-pos/internal/rbac"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware checks if the user has a valid JWT token.
// Missing, malformed and expired tokens are all rejected with the same
// 401 body so a probing client learns nothing about which case it hit.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get the token from the "Authorization" header
		// Format: "Bearer <token>"
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			c.Abort()
			return
		}

		// 2. Remove the "Bearer " prefix
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			c.Abort()
			return
		}

		// 3. Validate the token using our auth package
		claims, err := auth.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			c.Abort()
			return
		}

		// 4. Store user info in the context for the next handler to use
		c.Set("userID", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// RequirePermission consults the RBAC allow matrix for the caller's role.
// superadmin passes unconditionally; unknown roles are denied outright.
func RequirePermission(module string, action rbac.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")

		allowed, err := rbac.CheckPermission(database.DB, role, module, action)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			c.Abort()
			return
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireSuperadmin is the stricter gate used for role administration.
// Only the reserved superadmin role passes, regardless of what the
// permission table says.
func RequireSuperadmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != rbac.SuperadminRole {
			c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}
