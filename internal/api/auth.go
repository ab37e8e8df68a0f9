package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"clubcorra/internal/service" // Business services
)

// RegisterRequest starts a mobile signup
type RegisterRequest struct {
	MobileNumber string `json:"mobile_number" binding:"required,e164"`   // Mobile in +<country><number> form
	Email        string `json:"email" binding:"omitempty,email,max=191"` // Optional email
	FirstName    string `json:"first_name" binding:"required,max=100"`   // First name must be provided
	LastName     string `json:"last_name" binding:"omitempty,max=100"`   // Optional last name
}

// VerifyOTPRequest confirms a mobile OTP
type VerifyOTPRequest struct {
	MobileNumber string `json:"mobile_number" binding:"required,e164"`
	Code         string `json:"code" binding:"required,len=6,numeric"` // 6-digit code
}

// MobileRequest asks for a login OTP
type MobileRequest struct {
	MobileNumber string `json:"mobile_number" binding:"required,e164"`
}

// EmailLoginRequest is an email/password login for users and admins
type EmailLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GoogleLoginRequest carries a Google ID token from the app
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// RegisterHandler creates or refreshes a pending user and sends the registration OTP
func RegisterHandler(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			respondBindError(c, err)
			return
		}
		// Create the pending user and send the OTP
		err := auth.Register(c.Request.Context(), service.RegisterInput{
			MobileNumber: req.MobileNumber,
			Email:        req.Email,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		// Return accepted, the account is active only after verification
		c.JSON(http.StatusAccepted, gin.H{"message": "OTP sent"})
	}
}

// VerifyRegistrationHandler activates the user and logs them in
func VerifyRegistrationHandler(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		res, err := auth.VerifyRegistration(c.Request.Context(), req.MobileNumber, req.Code)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, res) // New account with its first token
	}
}

// RequestLoginOTPHandler sends a login OTP to an active user
func RequestLoginOTPHandler(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MobileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		if err := auth.RequestLoginOTP(c.Request.Context(), req.MobileNumber); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"message": "OTP sent"})
	}
}

// VerifyLoginHandler exchanges a login OTP for a token
func VerifyLoginHandler(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		res, err := auth.VerifyLogin(c.Request.Context(), req.MobileNumber, req.Code)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// EmailLoginHandler logs in a user who has set a password
func EmailLoginHandler(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req EmailLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		res, err := auth.LoginWithEmail(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// GoogleLoginHandler logs in with a Google ID token
func GoogleLoginHandler(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GoogleLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		res, err := auth.LoginWithGoogle(c.Request.Context(), req.IDToken)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// AdminLoginHandler logs in a portal admin
func AdminLoginHandler(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req EmailLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		res, err := auth.AdminLogin(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
