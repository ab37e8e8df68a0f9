package middleware

import (
	"net/http" // HTTP status codes
	"slices"
	"strings" // String manipulation

	"github.com/gin-gonic/gin" // Gin web framework

	"clubcorra/internal/utils" // JWT utility functions
)

// Context keys set by the auth middlewares
const (
	ContextUserID = "userID" // users.id or admins.id, depending on role
	ContextRole   = "role"
	ContextClaims = "claims"
	ContextAdmin  = "admin" // *domain.Admin, set by AdminOnlyMiddleware
)

// bearerToken reads the token from the Authorization header, or from the token
// query parameter for WebSocket upgrades where browsers cannot set headers
func bearerToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return ""
		}
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return c.Query("token")
}

// JWTAuthMiddleware validates JWT tokens and extracts subject information.
// When roles are given the token must carry one of them.
func JWTAuthMiddleware(secret string, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		// Check if a token was supplied at all
		if tokenStr == "" {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid Authorization header")
			return
		}
		claims, err := utils.ParseJWT(tokenStr, secret) // Parse the JWT token
		if err != nil {
			// If parsing fails, abort with unauthorized status
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
			return
		}
		// Check the role against the allowed set
		if len(roles) > 0 && !slices.Contains(roles, claims.Role) {
			abort(c, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
			return
		}
		c.Set(ContextUserID, claims.UserID) // Store subject id in context
		c.Set(ContextRole, claims.Role)
		c.Set(ContextClaims, claims)
		c.Next() // Proceed to the next handler
	}
}

// UserID returns the authenticated subject id, or 0 outside the auth middleware
func UserID(c *gin.Context) uint {
	return c.GetUint(ContextUserID)
}

// Claims returns the parsed token claims, or nil outside the auth middleware
func Claims(c *gin.Context) *utils.Claims {
	if v, ok := c.Get(ContextClaims); ok {
		if claims, ok := v.(*utils.Claims); ok {
			return claims
		}
	}
	return nil
}
