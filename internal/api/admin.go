package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"clubcorra/internal/domain"
	"clubcorra/internal/middleware"
	"clubcorra/internal/service"
)

// ConfigValueRequest sets one global config value; empty strings are allowed for string keys
type ConfigValueRequest struct {
	Value *string `json:"value" binding:"required"`
}

// CreateAdminRequest adds a portal account
type CreateAdminRequest struct {
	Email    string           `json:"email" binding:"required,email,max=191"`
	Name     string           `json:"name" binding:"omitempty,max=150"`
	Password string           `json:"password" binding:"required,min=8,max=64"`
	Role     domain.AdminRole `json:"role" binding:"omitempty,oneof=ADMIN SUPER_ADMIN"`
}

// ListConfigHandler returns every global config row
func ListConfigHandler(settings service.ConfigService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := settings.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": rows})
	}
}

// SetConfigHandler updates one global config value (super admins only)
func SetConfigHandler(settings service.ConfigService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ConfigValueRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		row, err := settings.Set(c.Request.Context(), c.Param("key"), *req.Value, middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, row)
	}
}

// CreateAdminHandler adds a portal admin (super admins only)
func CreateAdminHandler(admins service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateAdminRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		a, err := admins.Create(c.Request.Context(), service.AdminInput{
			Email:    req.Email,
			Name:     req.Name,
			Password: req.Password,
			Role:     req.Role,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, a)
	}
}

// ListAdminsHandler returns every portal account
func ListAdminsHandler(admins service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := admins.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": list})
	}
}

// SetAdminActiveHandler enables or disables a portal account
func SetAdminActiveHandler(admins service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req ActiveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		a, err := admins.SetActive(c.Request.Context(), id, middleware.UserID(c), *req.IsActive)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, a)
	}
}

// MeAdminHandler returns the signed-in admin
func MeAdminHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, middleware.CurrentAdmin(c))
	}
}
