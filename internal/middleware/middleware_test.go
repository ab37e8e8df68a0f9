package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubcorra/internal/db/dbtest"
	"clubcorra/internal/domain"
	"clubcorra/internal/utils"
)

const testSecret = "middleware-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func token(t *testing.T, id uint, role string) string {
	t.Helper()
	tok, err := utils.GenerateJWT(id, role, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func do(r http.Handler, method, target, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func TestJWTAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/me", JWTAuthMiddleware(testSecret, utils.RoleUser), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": UserID(c), "role": c.GetString(ContextRole)})
	})

	t.Run("missing token", func(t *testing.T) {
		w := do(r, http.MethodGet, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHORIZED", errorCode(t, w))
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Token abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bad signature", func(t *testing.T) {
		tok, err := utils.GenerateJWT(1, utils.RoleUser, "other", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", tok).Code)
	})

	t.Run("wrong role", func(t *testing.T) {
		w := do(r, http.MethodGet, "/me", token(t, 1, utils.RoleAdmin))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", errorCode(t, w))
	})

	t.Run("valid header", func(t *testing.T) {
		w := do(r, http.MethodGet, "/me", token(t, 42, utils.RoleUser))
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":42,"role":"user"}`, w.Body.String())
	})

	t.Run("query token", func(t *testing.T) {
		w := do(r, http.MethodGet, "/me?token="+token(t, 7, utils.RoleUser), "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":7,"role":"user"}`, w.Body.String())
	})
}

func TestAdminMiddlewares(t *testing.T) {
	gdb := dbtest.New(t)
	active := domain.Admin{Email: "ops@clubcorra.com", PasswordHash: "x", Role: domain.AdminRoleAdmin, IsActive: true}
	disabled := domain.Admin{Email: "old@clubcorra.com", PasswordHash: "x", Role: domain.AdminRoleAdmin}
	root := domain.Admin{Email: "root@clubcorra.com", PasswordHash: "x", Role: domain.AdminRoleSuperAdmin, IsActive: true}
	require.NoError(t, gdb.Create(&active).Error)
	require.NoError(t, gdb.Create(&disabled).Error)
	require.NoError(t, gdb.Create(&root).Error)

	r := gin.New()
	admin := r.Group("/admin", JWTAuthMiddleware(testSecret, utils.RoleAdmin, utils.RoleSuperAdmin), AdminOnlyMiddleware(gdb))
	admin.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, CurrentAdmin(c).Email) })
	admin.GET("/root", SuperAdminOnlyMiddleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := do(r, http.MethodGet, "/admin/ping", token(t, active.ID, utils.RoleAdmin))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ops@clubcorra.com", w.Body.String())

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/admin/ping", token(t, disabled.ID, utils.RoleAdmin)).Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/admin/ping", token(t, 999, utils.RoleAdmin)).Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/admin/ping", token(t, active.ID, utils.RoleUser)).Code)

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/admin/root", token(t, active.ID, utils.RoleAdmin)).Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodGet, "/admin/root", token(t, root.ID, utils.RoleSuperAdmin)).Code)

	// A super_admin claim on an ADMIN row is not enough; the row decides
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/admin/root", token(t, active.ID, utils.RoleSuperAdmin)).Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	t.Run("generates id when absent", func(t *testing.T) {
		w := do(r, http.MethodGet, "/test", "")
		rid := w.Header().Get(RequestIDHeader)
		assert.NotEmpty(t, rid)
		assert.Equal(t, rid, w.Body.String())
	})

	t.Run("keeps caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "test-id-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "test-id-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "test-id-123", w.Body.String())
	})
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	r := gin.New()
	r.Use(RequestID(), Logger(logger))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusAccepted) })

	w := do(r, http.MethodGet, "/test", "")
	require.Equal(t, http.StatusAccepted, w.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, w.Header().Get(RequestIDHeader), entry["request_id"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/test", entry["path"])
	assert.Equal(t, float64(http.StatusAccepted), entry["status"])
	assert.Equal(t, "info", entry["level"])
	assert.NotNil(t, entry["latency_ms"])
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	r := gin.New()
	r.Use(m.Handler())
	r.GET("/brands/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	do(r, http.MethodGet, "/brands/42", "")
	do(r, http.MethodGet, "/brands/43", "")
	do(r, http.MethodGet, "/metrics", "")
	do(r, http.MethodGet, "/nope", "")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/brands/:id", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.requestCount))
	assert.Equal(t, 2, testutil.CollectAndCount(m.requestDuration))

	_, err = NewMetrics(reg)
	assert.Error(t, err, "second registration on the same registry")
}
