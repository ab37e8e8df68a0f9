package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"clubcorra/internal/middleware"
	"clubcorra/internal/notify"
	"clubcorra/internal/service"
	"clubcorra/internal/utils"
)

// Deps is everything the HTTP layer needs
type Deps struct {
	JWTSecret      string
	TrustedProxies []string
	DB             *gorm.DB
	Logger         *logrus.Logger
	Registry       *prometheus.Registry // Metrics are registered here and served on /metrics

	Auth       service.AuthService
	Users      service.UserService
	Brands     service.BrandService
	Categories service.CategoryService
	Coins      service.CoinService
	Receipts   service.ReceiptService
	Dashboard  service.DashboardService
	Settings   service.ConfigService
	Admins     service.AdminService

	Hub *notify.Hub // Optional; without it the /ws routes are not mounted
}

// NewRouter builds the gin engine with every route
func NewRouter(d Deps) (*gin.Engine, error) {
	useJSONFieldNames()

	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("sql db: %w", err)
	}
	metrics, err := middleware.NewMetrics(d.Registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	logger := d.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	r := gin.New()
	r.MaxMultipartMemory = service.MaxReceiptSize + 1<<20
	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(logger), metrics.Handler())

	r.GET("/health", HealthHandler(sqlDB))
	r.GET("/healthz", LivenessHandler)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))

	userAuth := middleware.JWTAuthMiddleware(d.JWTSecret, utils.RoleUser)
	adminAuth := []gin.HandlerFunc{
		middleware.JWTAuthMiddleware(d.JWTSecret, utils.RoleAdmin, utils.RoleSuperAdmin),
		middleware.AdminOnlyMiddleware(d.DB),
	}

	// Auth routes
	auth := r.Group("/auth")
	auth.POST("/register", RegisterHandler(d.Auth))
	auth.POST("/register/verify", VerifyRegistrationHandler(d.Auth))
	auth.POST("/login/otp", RequestLoginOTPHandler(d.Auth))
	auth.POST("/login/verify", VerifyLoginHandler(d.Auth))
	auth.POST("/login/email", EmailLoginHandler(d.Auth))
	auth.POST("/oauth/google", GoogleLoginHandler(d.Auth))
	auth.POST("/admin/login", AdminLoginHandler(d.Auth))

	// Public catalogue
	r.GET("/brands", ListBrandsHandler(d.Brands, false))
	r.GET("/brands/:id", GetBrandHandler(d.Brands, false))
	r.GET("/categories", ListCategoriesHandler(d.Categories))

	// App user routes (protected by JWT)
	me := r.Group("/users/me", userAuth)
	me.GET("", GetMeHandler(d.Users))
	me.PUT("/profile", UpdateProfileHandler(d.Users))
	me.PUT("/payment-details", UpdatePaymentDetailsHandler(d.Users))
	me.PUT("/password", SetPasswordHandler(d.Users))
	me.POST("/email/verify/request", RequestEmailVerificationHandler(d.Users))
	me.POST("/email/verify/confirm", ConfirmEmailVerificationHandler(d.Users))
	me.POST("/auth-providers/google", LinkGoogleHandler(d.Auth))

	coins := r.Group("/coins", userAuth)
	coins.GET("/balance", BalanceHandler(d.Coins))
	coins.POST("/requests", SubmitRewardRequestHandler(d.Coins))
	coins.POST("/receipts", UploadReceiptHandler(d.Receipts))
	coins.GET("/transactions", ListMyTransactionsHandler(d.Coins))
	coins.GET("/transactions/:id", GetMyTransactionHandler(d.Coins))

	// Admin routes (protected, admin row re-checked on each request)
	admin := r.Group("/admin", adminAuth...)
	admin.GET("/me", MeAdminHandler())
	admin.GET("/dashboard", DashboardHandler(d.Dashboard))

	admin.GET("/users", ListUsersHandler(d.Users))
	admin.GET("/users/:id", GetUserHandler(d.Users))
	admin.PATCH("/users/:id/status", SetUserStatusHandler(d.Users))
	admin.DELETE("/users/:id", DeleteUserHandler(d.Users))
	admin.POST("/users/:id/adjust", AdjustCoinsHandler(d.Coins))

	admin.GET("/transactions", ListTransactionsHandler(d.Coins))
	admin.GET("/transactions/:id", GetTransactionHandler(d.Coins))
	admin.GET("/transactions/:id/receipt", ReceiptURLHandler(d.Receipts))
	admin.POST("/transactions/:id/approve", ApproveTransactionHandler(d.Coins))
	admin.POST("/transactions/:id/reject", RejectTransactionHandler(d.Coins))
	admin.POST("/transactions/:id/process", ProcessTransactionHandler(d.Coins))
	admin.POST("/transactions/:id/paid", MarkPaidHandler(d.Coins))

	admin.GET("/brands", ListBrandsHandler(d.Brands, true))
	admin.GET("/brands/:id", GetBrandHandler(d.Brands, true))
	admin.POST("/brands", CreateBrandHandler(d.Brands))
	admin.PUT("/brands/:id", UpdateBrandHandler(d.Brands))
	admin.PATCH("/brands/:id/active", SetBrandActiveHandler(d.Brands))
	admin.DELETE("/brands/:id", DeleteBrandHandler(d.Brands))

	admin.POST("/categories", CreateCategoryHandler(d.Categories))
	admin.PUT("/categories/:id", UpdateCategoryHandler(d.Categories))
	admin.DELETE("/categories/:id", DeleteCategoryHandler(d.Categories))

	admin.GET("/config", ListConfigHandler(d.Settings))

	// Super admin only
	super := admin.Group("", middleware.SuperAdminOnlyMiddleware())
	super.PUT("/config/:key", SetConfigHandler(d.Settings))
	super.POST("/admins", CreateAdminHandler(d.Admins))
	super.GET("/admins", ListAdminsHandler(d.Admins))
	super.PATCH("/admins/:id/active", SetAdminActiveHandler(d.Admins))

	// Notification sockets; token comes as ?token= on upgrade
	if d.Hub != nil {
		r.GET("/ws/user", userAuth, EventsHandler(d.Hub, false))
		r.GET("/ws/admin", append(adminAuth, EventsHandler(d.Hub, true))...)
	}

	return r, nil
}
