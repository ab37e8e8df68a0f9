package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"clubcorra/internal/config"
	dbpkg "clubcorra/internal/db"
	"clubcorra/internal/db/dbtest"
	"clubcorra/internal/domain"
	"clubcorra/internal/notify"
	"clubcorra/internal/service"
	"clubcorra/internal/service/mocks"
	storeMocks "clubcorra/internal/storage/mocks"
	"clubcorra/internal/utils"
)

const testSecret = "api-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// env is a full router where the busy services are mocks and the small ones run on SQLite
type env struct {
	r      *gin.Engine
	db     *gorm.DB
	auth   *mocks.MockAuthService
	users  *mocks.MockUserService
	brands *mocks.MockBrandService
	coins  *mocks.MockCoinService
	store  *storeMocks.MockStorage
	admin  domain.Admin
	super  domain.Admin
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWithHub(t, nil)
}

func newEnvWithHub(t *testing.T, hub *notify.Hub) *env {
	t.Helper()
	gdb := dbtest.New(t)
	require.NoError(t, dbpkg.Seed(gdb, &config.Config{}))

	e := &env{
		db:     gdb,
		auth:   new(mocks.MockAuthService),
		users:  new(mocks.MockUserService),
		brands: new(mocks.MockBrandService),
		coins:  new(mocks.MockCoinService),
		store:  new(storeMocks.MockStorage),
		admin:  domain.Admin{Email: "ops@clubcorra.com", PasswordHash: "x", Role: domain.AdminRoleAdmin, IsActive: true},
		super:  domain.Admin{Email: "root@clubcorra.com", PasswordHash: "x", Role: domain.AdminRoleSuperAdmin, IsActive: true},
	}
	require.NoError(t, gdb.Create(&e.admin).Error)
	require.NoError(t, gdb.Create(&e.super).Error)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	r, err := NewRouter(Deps{
		JWTSecret:  testSecret,
		DB:         gdb,
		Logger:     logger,
		Registry:   prometheus.NewRegistry(),
		Auth:       e.auth,
		Users:      e.users,
		Brands:     e.brands,
		Categories: service.NewCategoryService(gdb, nil),
		Coins:      e.coins,
		Receipts:   service.NewReceiptService(gdb, e.store),
		Dashboard:  service.NewDashboardService(gdb, nil),
		Settings:   service.NewConfigService(gdb, nil),
		Admins:     service.NewAdminService(gdb),
		Hub:        hub,
	})
	require.NoError(t, err)
	e.r = r
	t.Cleanup(func() {
		e.auth.AssertExpectations(t)
		e.users.AssertExpectations(t)
		e.brands.AssertExpectations(t)
		e.coins.AssertExpectations(t)
		e.store.AssertExpectations(t)
	})
	return e
}

func mustToken(t *testing.T, id uint, role string) string {
	t.Helper()
	tok, err := utils.GenerateJWT(id, role, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func (e *env) userToken(t *testing.T, id uint) string {
	return mustToken(t, id, utils.RoleUser)
}

func (e *env) adminToken(t *testing.T) string {
	return mustToken(t, e.admin.ID, utils.RoleAdmin)
}

func (e *env) superToken(t *testing.T) string {
	return mustToken(t, e.super.ID, utils.RoleSuperAdmin)
}

// do sends a request; body may be nil, a string of raw JSON or any value to marshal
func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var p errorPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p), w.Body.String())
	return p
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}

func utoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
