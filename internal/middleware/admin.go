package middleware

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library

	"clubcorra/internal/domain" // Importing domain models
)

// AdminOnlyMiddleware checks the admin row on each request, so a deactivated
// admin loses access before the token expires. Must run after JWTAuthMiddleware.
func AdminOnlyMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		// Check that an admin token was presented
		if claims == nil {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
			return
		}
		if !claims.IsAdmin() {
			abort(c, http.StatusForbidden, "FORBIDDEN", "Admin access required")
			return
		}
		var admin domain.Admin // Fetch admin from database
		if err := db.WithContext(c.Request.Context()).First(&admin, claims.UserID).Error; err != nil {
			// If admin not found or any error, abort with forbidden status
			abort(c, http.StatusForbidden, "FORBIDDEN", "Admin access required")
			return
		}
		// Check the admin is still active
		if !admin.IsActive {
			abort(c, http.StatusForbidden, "FORBIDDEN", "Admin account is disabled")
			return
		}
		c.Set(ContextAdmin, &admin)
		c.Next()
	}
}

// SuperAdminOnlyMiddleware allows only super admins. Must run after AdminOnlyMiddleware,
// which loads the current role from the database.
func SuperAdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		admin := CurrentAdmin(c)
		if admin == nil || admin.Role != domain.AdminRoleSuperAdmin {
			abort(c, http.StatusForbidden, "FORBIDDEN", "Super admin access required")
			return
		}
		c.Next()
	}
}

// CurrentAdmin returns the admin loaded by AdminOnlyMiddleware
func CurrentAdmin(c *gin.Context) *domain.Admin {
	if v, ok := c.Get(ContextAdmin); ok {
		if admin, ok := v.(*domain.Admin); ok {
			return admin
		}
	}
	return nil
}
