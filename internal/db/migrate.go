package db

import (
	"clubcorra/internal/config" // Custom import path (Config)
	"clubcorra/internal/domain" // Importing domain models
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt" // Seeded admin password
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/driver/postgres"    // Postgres driver for GORM
	"gorm.io/driver/sqlite"      // SQLite driver for GORM
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/logger"
)

// Models lists every table in migration order
func Models() []any {
	return []any{
		&domain.User{},
		&domain.UserProfile{},
		&domain.PaymentDetails{},
		&domain.AuthProvider{},
		&domain.OTP{},
		&domain.BrandCategory{},
		&domain.Brand{},
		&domain.CoinBalance{},
		&domain.CoinTransaction{},
		&domain.GlobalConfig{},
		&domain.Admin{},
	}
}

// dialector picks the gorm driver for the configured database
func dialector(cfg config.DBConfig) (gorm.Dialector, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	switch cfg.Driver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	default:
		return sqlite.Open(dsn), nil
	}
}

// Open connects to the database and applies pool settings
func Open(cfg config.DBConfig, isProd bool) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}
	logLevel := logger.Info
	if isProd {
		logLevel = logger.Warn
	}
	db, err := gorm.Open(d, &gorm.Config{
		TranslateError: true, // Surface gorm.ErrDuplicatedKey for unique violations
		Logger:         logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql db: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return db, nil
}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logrus.Info("Migration completed.")
	return nil
}

// defaultCategories are created on first seed
var defaultCategories = []domain.BrandCategory{
	{Name: "Food & Dining", Icon: "restaurant", Color: "#F97316"},
	{Name: "Fashion", Icon: "shirt", Color: "#EC4899"},
	{Name: "Groceries", Icon: "cart", Color: "#22C55E"},
	{Name: "Electronics", Icon: "cpu", Color: "#3B82F6"},
	{Name: "Travel", Icon: "plane", Color: "#8B5CF6"},
}

// DefaultGlobalConfig are the settings every installation starts with
var DefaultGlobalConfig = []domain.GlobalConfig{
	{Key: domain.ConfigWelcomeBonusAmount, Value: "100", Type: domain.ConfigTypeNumber, Description: "Coins granted once after signup"},
	{Key: domain.ConfigWelcomeBonusEnabled, Value: "true", Type: domain.ConfigTypeBoolean, Description: "Whether new users receive the welcome bonus"},
	{Key: domain.ConfigMaxPendingRequests, Value: "5", Type: domain.ConfigTypeNumber, Description: "Pending reward requests allowed per user"},
	{Key: domain.ConfigMaxBillAgeDays, Value: "30", Type: domain.ConfigTypeNumber, Description: "Oldest bill date accepted, in days"},
}

// Seed creates default rows; running it twice changes nothing
func Seed(db *gorm.DB, cfg *config.Config) error {
	for _, c := range defaultCategories {
		category := c
		if err := db.Where(domain.BrandCategory{Name: category.Name}).FirstOrCreate(&category).Error; err != nil {
			return fmt.Errorf("seed category %s: %w", c.Name, err)
		}
	}
	for _, g := range DefaultGlobalConfig {
		row := g
		if err := db.Where(domain.GlobalConfig{Key: row.Key}).FirstOrCreate(&row).Error; err != nil {
			return fmt.Errorf("seed config %s: %w", g.Key, err)
		}
	}
	if cfg.SeedAdminEmail == "" {
		logrus.Warn("SEED_ADMIN_EMAIL not set, skipping super admin")
		return nil
	}
	if len(cfg.SeedAdminPassword) < 8 {
		return errors.New("SEED_ADMIN_PASSWORD must be at least 8 characters")
	}
	email := strings.ToLower(strings.TrimSpace(cfg.SeedAdminEmail))
	var existing domain.Admin
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil // Already seeded
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := domain.Admin{Email: email, Name: "Super Admin", PasswordHash: string(hash), Role: domain.AdminRoleSuperAdmin, IsActive: true}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	logrus.WithField("admin_id", admin.ID).Info("Super admin seeded")
	return nil
}
