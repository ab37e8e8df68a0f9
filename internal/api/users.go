package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"clubcorra/internal/domain"
	"clubcorra/internal/middleware"
	"clubcorra/internal/service"
	"clubcorra/internal/utils"
)

// ProfileRequest updates the caller's profile
type ProfileRequest struct {
	FirstName   string `json:"first_name" binding:"required,max=100"`
	LastName    string `json:"last_name" binding:"omitempty,max=100"`
	DateOfBirth string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	Gender      string `json:"gender" binding:"omitempty,max=20"`
	AddressLine string `json:"address_line" binding:"omitempty,max=255"`
	City        string `json:"city" binding:"omitempty,max=100"`
	State       string `json:"state" binding:"omitempty,max=100"`
	PostalCode  string `json:"postal_code" binding:"omitempty,max=20"`
}

// PaymentDetailsRequest sets where payouts go
type PaymentDetailsRequest struct {
	UpiID              string `json:"upi_id" binding:"required,max=255"`
	PayoutMobileNumber string `json:"payout_mobile_number" binding:"omitempty,e164"`
}

// PasswordRequest sets an email/password login
type PasswordRequest struct {
	Password string `json:"password" binding:"required,min=8,max=64"`
}

// CodeRequest confirms an OTP for the signed-in user
type CodeRequest struct {
	Code string `json:"code" binding:"required,len=6,numeric"`
}

// UserStatusRequest changes a user's status from the portal
type UserStatusRequest struct {
	Status domain.UserStatus `json:"status" binding:"required,oneof=ACTIVE SUSPENDED"`
}

// AdjustRequest is a manual coin correction
type AdjustRequest struct {
	Coins  int64  `json:"coins" binding:"required"` // Signed, non-zero
	Reason string `json:"reason" binding:"required,max=500"`
}

// GetMeHandler returns the caller with profile, payment details and balance
func GetMeHandler(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := users.Get(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// UpdateProfileHandler replaces the caller's profile fields
func UpdateProfileHandler(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		in := service.ProfileInput{
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Gender:      req.Gender,
			AddressLine: req.AddressLine,
			City:        req.City,
			State:       req.State,
			PostalCode:  req.PostalCode,
		}
		if req.DateOfBirth != "" {
			dob, err := time.Parse(dateLayout, req.DateOfBirth)
			if err != nil {
				respondError(c, &service.FieldError{Field: "date_of_birth", Message: "must be a date (YYYY-MM-DD)"})
				return
			}
			in.DateOfBirth = &dob
		}
		p, err := users.UpdateProfile(c.Request.Context(), middleware.UserID(c), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// UpdatePaymentDetailsHandler sets the caller's UPI id
func UpdatePaymentDetailsHandler(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PaymentDetailsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		pd, err := users.UpdatePaymentDetails(c.Request.Context(), middleware.UserID(c), service.PaymentDetailsInput{
			UpiID:              req.UpiID,
			PayoutMobileNumber: req.PayoutMobileNumber,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, pd)
	}
}

// SetPasswordHandler enables email/password login for the caller
func SetPasswordHandler(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		if err := users.SetPassword(c.Request.Context(), middleware.UserID(c), req.Password); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// RequestEmailVerificationHandler mails a code to the caller's email
func RequestEmailVerificationHandler(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := users.RequestEmailVerification(c.Request.Context(), middleware.UserID(c)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"message": "OTP sent"})
	}
}

// ConfirmEmailVerificationHandler marks the caller's email verified
func ConfirmEmailVerificationHandler(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		if err := users.ConfirmEmailVerification(c.Request.Context(), middleware.UserID(c), req.Code); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// LinkGoogleHandler attaches a Google identity to the caller
func LinkGoogleHandler(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GoogleLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		link, err := auth.LinkGoogle(c.Request.Context(), middleware.UserID(c), req.IDToken)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, link)
	}
}

// ListUsersHandler returns one page of users for the portal
func ListUsersHandler(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := service.UserFilter{
			Search: c.Query("search"),
			Status: domain.UserStatus(c.Query("status")),
		}
		if f.Status != "" && !f.Status.Valid() {
			respondError(c, &service.FieldError{Field: "status", Message: "unknown status"})
			return
		}
		page, err := users.List(c.Request.Context(), f, utils.ParsePage(c.Query("page"), c.Query("page_size")))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// GetUserHandler returns one user with related records
func GetUserHandler(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		u, err := users.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// SetUserStatusHandler suspends or reactivates a user
func SetUserStatusHandler(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req UserStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		u, err := users.SetStatus(c.Request.Context(), id, req.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// DeleteUserHandler soft deletes a user
func DeleteUserHandler(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := users.Delete(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// AdjustCoinsHandler credits or debits a user's balance by hand
func AdjustCoinsHandler(coins service.CoinService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req AdjustRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		t, err := coins.Adjust(c.Request.Context(), id, middleware.UserID(c), req.Coins, req.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, t)
	}
}
