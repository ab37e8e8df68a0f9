package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"clubcorra/internal/domain"
	"clubcorra/internal/oauth"
	"clubcorra/internal/service"
)

func TestRegisterHandler(t *testing.T) {
	e := newEnv(t)

	t.Run("sends otp", func(t *testing.T) {
		e.auth.On("Register", mock.Anything, service.RegisterInput{
			MobileNumber: "+919876543210",
			Email:        "asha@example.com",
			FirstName:    "Asha",
		}).Return(nil).Once()

		w := e.do(t, http.MethodPost, "/auth/register", "", gin.H{
			"mobile_number": "+919876543210",
			"email":         "asha@example.com",
			"first_name":    "Asha",
		})
		requireStatus(t, w, http.StatusAccepted)
	})

	t.Run("field errors use json names", func(t *testing.T) {
		w := e.do(t, http.MethodPost, "/auth/register", "", gin.H{"mobile_number": "98765"})
		requireStatus(t, w, http.StatusBadRequest)
		p := decodeError(t, w)
		assert.Equal(t, "VALIDATION_FAILED", p.Error.Code)
		assert.Equal(t, "e164", p.Error.Fields["mobile_number"])
		assert.Equal(t, "required", p.Error.Fields["first_name"])
		assert.NotEmpty(t, p.RequestID)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := e.do(t, http.MethodPost, "/auth/register", "", "{")
		requireStatus(t, w, http.StatusBadRequest)
		assert.Equal(t, "INVALID_REQUEST", decodeError(t, w).Error.Code)
	})

	t.Run("active mobile", func(t *testing.T) {
		e.auth.On("Register", mock.Anything, mock.Anything).Return(service.ErrConflict).Once()
		w := e.do(t, http.MethodPost, "/auth/register", "", gin.H{"mobile_number": "+919876543210", "first_name": "Asha"})
		requireStatus(t, w, http.StatusConflict)
		assert.Equal(t, "CONFLICT", decodeError(t, w).Error.Code)
	})
}

func TestVerifyRegistrationHandler(t *testing.T) {
	e := newEnv(t)
	res := &service.AuthResult{Token: "tok", ExpiresAt: time.Now().Add(time.Hour), User: &domain.User{ID: 3, MobileNumber: "+919876543210"}}
	e.auth.On("VerifyRegistration", mock.Anything, "+919876543210", "123456").Return(res, nil).Once()
	e.auth.On("VerifyRegistration", mock.Anything, "+919876543210", "654321").Return(nil, service.ErrOTPExpired).Once()

	w := e.do(t, http.MethodPost, "/auth/register/verify", "", gin.H{"mobile_number": "+919876543210", "code": "123456"})
	requireStatus(t, w, http.StatusCreated)
	got := decode[service.AuthResult](t, w)
	assert.Equal(t, "tok", got.Token)
	assert.Equal(t, uint(3), got.User.ID)

	w = e.do(t, http.MethodPost, "/auth/register/verify", "", gin.H{"mobile_number": "+919876543210", "code": "654321"})
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "OTP_EXPIRED", decodeError(t, w).Error.Code)

	w = e.do(t, http.MethodPost, "/auth/register/verify", "", gin.H{"mobile_number": "+919876543210", "code": "12ab56"})
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "numeric", decodeError(t, w).Error.Fields["code"])
}

func TestLoginHandlers(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name   string
		path   string
		body   gin.H
		setup  func()
		status int
		code   string
	}{
		{
			name:   "otp cooldown",
			path:   "/auth/login/otp",
			body:   gin.H{"mobile_number": "+919876543210"},
			setup:  func() { e.auth.On("RequestLoginOTP", mock.Anything, "+919876543210").Return(service.ErrOTPCooldown).Once() },
			status: http.StatusTooManyRequests,
			code:   "OTP_COOLDOWN",
		},
		{
			name:   "otp attempts exhausted",
			path:   "/auth/login/verify",
			body:   gin.H{"mobile_number": "+919876543210", "code": "000000"},
			setup:  func() { e.auth.On("VerifyLogin", mock.Anything, "+919876543210", "000000").Return(nil, service.ErrOTPAttemptsExceeded).Once() },
			status: http.StatusTooManyRequests,
			code:   "OTP_ATTEMPTS_EXCEEDED",
		},
		{
			name:   "suspended user",
			path:   "/auth/login/otp",
			body:   gin.H{"mobile_number": "+919876543211"},
			setup:  func() { e.auth.On("RequestLoginOTP", mock.Anything, "+919876543211").Return(service.ErrUserNotActive).Once() },
			status: http.StatusForbidden,
			code:   "USER_NOT_ACTIVE",
		},
		{
			name:   "wrong password",
			path:   "/auth/login/email",
			body:   gin.H{"email": "asha@example.com", "password": "nope"},
			setup:  func() { e.auth.On("LoginWithEmail", mock.Anything, "asha@example.com", "nope").Return(nil, service.ErrInvalidCredentials).Once() },
			status: http.StatusUnauthorized,
			code:   "INVALID_CREDENTIALS",
		},
		{
			name:   "google account not linked",
			path:   "/auth/oauth/google",
			body:   gin.H{"id_token": "abc"},
			setup:  func() { e.auth.On("LoginWithGoogle", mock.Anything, "abc").Return(nil, service.ErrAccountNotLinked).Once() },
			status: http.StatusNotFound,
			code:   "ACCOUNT_NOT_LINKED",
		},
		{
			name:   "google not configured",
			path:   "/auth/oauth/google",
			body:   gin.H{"id_token": "abc"},
			setup:  func() { e.auth.On("LoginWithGoogle", mock.Anything, "abc").Return(nil, oauth.ErrNotConfigured).Once() },
			status: http.StatusServiceUnavailable,
			code:   "OAUTH_UNAVAILABLE",
		},
		{
			name:   "admin disabled",
			path:   "/auth/admin/login",
			body:   gin.H{"email": "ops@clubcorra.com", "password": "password1"},
			setup:  func() { e.auth.On("AdminLogin", mock.Anything, "ops@clubcorra.com", "password1").Return(nil, service.ErrForbidden).Once() },
			status: http.StatusForbidden,
			code:   "FORBIDDEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			w := e.do(t, http.MethodPost, tt.path, "", tt.body)
			requireStatus(t, w, tt.status)
			assert.Equal(t, tt.code, decodeError(t, w).Error.Code)
		})
	}

	t.Run("admin login ok", func(t *testing.T) {
		e.auth.On("AdminLogin", mock.Anything, "root@clubcorra.com", "password1").
			Return(&service.AuthResult{Token: "admin-token", Admin: &e.super}, nil).Once()
		w := e.do(t, http.MethodPost, "/auth/admin/login", "", gin.H{"email": "root@clubcorra.com", "password": "password1"})
		requireStatus(t, w, http.StatusOK)
		assert.Equal(t, "admin-token", decode[service.AuthResult](t, w).Token)
	})
}

func TestLinkGoogleHandler(t *testing.T) {
	e := newEnv(t)
	link := &domain.AuthProvider{ID: 1, UserID: 9, Provider: domain.AuthProviderGoogle, ProviderID: "sub-1"}
	e.auth.On("LinkGoogle", mock.Anything, uint(9), "id-tok").Return(link, nil).Once()
	e.auth.On("LinkGoogle", mock.Anything, uint(9), "taken").Return(nil, service.ErrConflict).Once()

	w := e.do(t, http.MethodPost, "/users/me/auth-providers/google", e.userToken(t, 9), gin.H{"id_token": "id-tok"})
	requireStatus(t, w, http.StatusCreated)
	assert.Equal(t, "sub-1", decode[domain.AuthProvider](t, w).ProviderID)

	w = e.do(t, http.MethodPost, "/users/me/auth-providers/google", e.userToken(t, 9), gin.H{"id_token": "taken"})
	requireStatus(t, w, http.StatusConflict)
}
