package api

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"clubcorra/internal/middleware"
	"clubcorra/internal/oauth"
	"clubcorra/internal/service"
)

// errorPayload is the body of every error response
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorMappings is checked in order with errors.Is
var errorMappings = []errorMapping{
	{service.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{service.ErrConflict, http.StatusConflict, "CONFLICT"},
	{service.ErrValidation, http.StatusBadRequest, "VALIDATION_FAILED"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{service.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{service.ErrUserNotActive, http.StatusForbidden, "USER_NOT_ACTIVE"},
	{service.ErrOTPInvalid, http.StatusBadRequest, "OTP_INVALID"},
	{service.ErrOTPExpired, http.StatusBadRequest, "OTP_EXPIRED"},
	{service.ErrOTPAttemptsExceeded, http.StatusTooManyRequests, "OTP_ATTEMPTS_EXCEEDED"},
	{service.ErrOTPCooldown, http.StatusTooManyRequests, "OTP_COOLDOWN"},
	{service.ErrAccountNotLinked, http.StatusNotFound, "ACCOUNT_NOT_LINKED"},
	{service.ErrBrandInactive, http.StatusBadRequest, "BRAND_INACTIVE"},
	{service.ErrInsufficientBalance, http.StatusBadRequest, "INSUFFICIENT_BALANCE"},
	{service.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
	{service.ErrWelcomeBonusGranted, http.StatusConflict, "WELCOME_BONUS_GRANTED"},
	{service.ErrTooManyPending, http.StatusConflict, "TOO_MANY_PENDING"},
	{service.ErrNoPayoutDue, http.StatusConflict, "NO_PAYOUT_DUE"},
	{service.ErrPaymentDetailsMissing, http.StatusConflict, "PAYMENT_DETAILS_MISSING"},
	{service.ErrStorageUnavailable, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE"},
	{oauth.ErrNotConfigured, http.StatusServiceUnavailable, "OAUTH_UNAVAILABLE"},
	{oauth.ErrInvalidIDToken, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
}

// writeError writes the standard error envelope
func writeError(c *gin.Context, status int, code, message string, fields map[string]string) {
	c.AbortWithStatusJSON(status, errorPayload{
		RequestID: middleware.GetRequestID(c),
		Error:     errorEnvelope{Code: code, Message: message, Fields: fields},
	})
}

// respondError maps a service error to its HTTP response. Unknown errors are
// logged and reported as a bare 500.
func respondError(c *gin.Context, err error) {
	var fe *service.FieldError
	if errors.As(err, &fe) {
		writeError(c, http.StatusBadRequest, "VALIDATION_FAILED", "validation failed", map[string]string{fe.Field: fe.Message})
		return
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			writeError(c, m.status, m.code, err.Error(), nil)
			return
		}
	}
	logrus.WithFields(logrus.Fields{
		"request_id": middleware.GetRequestID(c),
		"path":       c.FullPath(),
		"error":      err.Error(),
	}).Error("Unhandled error")
	_ = c.Error(err)
	writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
}

// respondBindError reports a request body or query that failed binding
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = ruleMessage(fe)
		}
		writeError(c, http.StatusBadRequest, "VALIDATION_FAILED", "validation failed", fields)
		return
	}
	writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request", nil)
}

func ruleMessage(fe validator.FieldError) string {
	if fe.Param() != "" {
		return fe.Tag() + "=" + fe.Param()
	}
	return fe.Tag()
}

var registerTagNames sync.Once

// useJSONFieldNames makes validation errors report json names (bill_amount, not BillAmount)
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
	})
}
