package main

import (
	"context"   // Context for startup and shutdown
	"errors"    // Error checks
	"net/http"  // HTTP server
	"os"        // Signals
	"os/signal" // Signal notification
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"github.com/gin-gonic/gin"                                  // Gin web framework
	"github.com/prometheus/client_golang/prometheus"            // Metrics registry
	"github.com/prometheus/client_golang/prometheus/collectors" // Runtime collectors
	"github.com/redis/go-redis/v9"                              // Redis client
	"github.com/sirupsen/logrus"                                // Logrus for structured logging

	"clubcorra/internal/api"       // HTTP handlers and router
	"clubcorra/internal/config"    // Configuration
	dbpkg "clubcorra/internal/db"  // Database setup
	"clubcorra/internal/domain"    // OTP channels
	"clubcorra/internal/notify"    // Realtime events
	"clubcorra/internal/oauth"     // Google sign-in
	"clubcorra/internal/scheduler" // Background jobs
	"clubcorra/internal/sender"    // SMS and email delivery
	"clubcorra/internal/service"   // Business logic
	"clubcorra/internal/storage"   // Receipt storage
	"clubcorra/internal/utils"     // Cache
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logger := logrus.StandardLogger()
	if cfg.IsProd {
		logger.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode) // Set Mode to Release if in production
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := dbpkg.Open(cfg.DB, cfg.IsProd)
	if err != nil {
		logger.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if err := dbpkg.Migrate(db); err != nil {
		logger.Fatalf("failed to migrate DB: %v", err)
	}

	// Setup Redis client
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr, // Redis server address
		Password: cfg.Redis.Pass, // Redis password
		DB:       cfg.Redis.DB,   // Redis database number
	})
	defer rdb.Close()
	// Test Redis connection
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatalf("failed to connect to Redis: %v", err)
	}
	cache := utils.NewCache(rdb)
	pub := notify.NewRedisPublisher(rdb)

	var smsSender, emailSender sender.Sender = sender.LogSender{Channel: "SMS"}, sender.LogSender{Channel: "EMAIL"}
	if cfg.SMS.APIURL != "" {
		smsSender = sender.NewSMSSender(cfg.SMS)
	} else {
		logger.Warn("SMS_API_URL not set, OTPs are logged instead of sent")
	}
	if cfg.Email.SendGridAPIKey != "" {
		emailSender = sender.NewEmailSender(cfg.Email, "")
	} else {
		logger.Warn("SENDGRID_API_KEY not set, emails are logged instead of sent")
	}

	store, err := storage.NewMinIO(ctx, cfg.MinIO)
	if errors.Is(err, storage.ErrNotConfigured) {
		logger.Warn("MINIO_ENDPOINT not set, receipt uploads are disabled")
	} else if err != nil {
		logger.Fatalf("failed to connect to object storage: %v", err)
	}

	// Services
	settings := service.NewConfigService(db, cache)
	otp := service.NewOTPService(db, cache, cfg.OTP, map[domain.OTPChannel]sender.Sender{
		domain.OTPChannelSMS:   smsSender,
		domain.OTPChannelEmail: emailSender,
	})
	coins := service.NewCoinService(db, cache, pub, settings)
	auth := service.NewAuthService(db, service.TokenConfig{Secret: cfg.JWTSecret, TTL: cfg.JWTTTL},
		otp, oauth.NewGoogleVerifier(cfg.OAuth), coins, settings)

	hub := notify.NewHub(rdb, cfg.AllowedOrigins)
	go func() {
		if err := hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("Event hub stopped")
		}
	}()

	receipts := service.NewReceiptService(db, store)
	jobs, err := scheduler.New(otp, coins, receipts, pub)
	if err != nil {
		logger.Fatalf("failed to schedule jobs: %v", err)
	}
	jobs.Start()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r, err := api.NewRouter(api.Deps{
		JWTSecret:      cfg.JWTSecret,
		TrustedProxies: cfg.TrustedProxies,
		DB:             db,
		Logger:         logger,
		Registry:       registry,
		Auth:           auth,
		Users:          service.NewUserService(db, otp),
		Brands:         service.NewBrandService(db, cache),
		Categories:     service.NewCategoryService(db, cache),
		Coins:          coins,
		Receipts:       receipts,
		Dashboard:      service.NewDashboardService(db, cache),
		Settings:       settings,
		Admins:         service.NewAdminService(db),
		Hub:            hub,
	})
	if err != nil {
		logger.Fatalf("failed to build router: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.WithField("port", cfg.AppPort).Info("Server running") // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("HTTP shutdown")
	}
	jobs.Stop(shutdownCtx)
}
