package config

import (
	"fmt"     // For DSN formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For list parsing
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// DBConfig holds the relational database settings
type DBConfig struct {
	Driver          string        // mysql, postgres or sqlite
	User            string        // Database user
	Password        string        // Database password
	Host            string        // Database host
	Port            string        // Database port
	Name            string        // Database name (file path for sqlite)
	SSLMode         string        // Postgres sslmode
	MaxOpenConns    int           // Pool: max open connections
	MaxIdleConns    int           // Pool: max idle connections
	ConnMaxLifetime time.Duration // Pool: connection lifetime
}

// RedisConfig holds the Redis connection settings
type RedisConfig struct {
	Addr string // Redis server address
	Pass string // Redis password
	DB   int    // Redis database number
}

// OTPConfig controls one-time password issuing
type OTPConfig struct {
	TTL            time.Duration // How long a code stays valid
	MaxAttempts    int           // Wrong guesses allowed per code
	ResendCooldown time.Duration // Minimum gap between two codes for one identifier
}

// SMSConfig points at the SMS gateway used for mobile OTPs
type SMSConfig struct {
	APIURL   string // Gateway endpoint
	APIKey   string // Gateway key
	SenderID string // Registered sender id
}

// EmailConfig holds SendGrid settings for email OTPs
type EmailConfig struct {
	SendGridAPIKey string // SendGrid API key
	From           string // Sender address
	FromName       string // Sender display name
}

// MinIOConfig holds object storage settings for bill receipts
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// OAuthConfig holds Google sign-in settings
type OAuthConfig struct {
	GoogleClientID     string // Expected audience of Google ID tokens
	GoogleTokenInfoURL string // Token info endpoint
}

// Config holds the application configuration
type Config struct {
	AppPort            string        // Application port
	IsProd             bool          // Is production environment
	TrustedProxies     []string      // Proxies gin trusts for client IPs
	AllowedOrigins     []string      // Browser origins allowed on the event sockets
	DB                 DBConfig      // Database settings
	Redis              RedisConfig   // Redis settings
	JWTSecret          string        // JWT secret key
	JWTTTL             time.Duration // Access token lifetime
	OTP                OTPConfig     // OTP settings
	SMS                SMSConfig     // SMS gateway settings
	Email              EmailConfig   // Email settings
	MinIO              MinIOConfig   // Receipt storage settings
	OAuth              OAuthConfig   // Social login settings
	SeedAdminEmail     string        // Super admin created by the seeder
	SeedAdminPassword  string        // Password for the seeded super admin
	EventsWebSocketURL string        // Admin feed URL used by cmd/eventtail
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort:        getEnv("APP_PORT", "8080"),
		IsProd:         getEnvBool("IS_PROD", false),
		TrustedProxies: getEnvList("TRUSTED_PROXIES", []string{"127.0.0.1"}),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", nil),
		DB: DBConfig{
			Driver:          strings.ToLower(getEnv("DB_DRIVER", "mysql")),
			User:            getEnv("DB_USER", ""),
			Password:        getEnv("DB_PASSWORD", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "3306"),
			Name:            getEnv("DB_NAME", "club_corra"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
			Pass: getEnv("REDIS_PASS", ""),
			DB:   getEnvInt("REDIS_DB", 0),
		},
		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    getEnvDuration("JWT_TTL", 24*time.Hour),
		OTP: OTPConfig{
			TTL:            getEnvDuration("OTP_TTL", 5*time.Minute),
			MaxAttempts:    getEnvInt("OTP_MAX_ATTEMPTS", 5),
			ResendCooldown: getEnvDuration("OTP_RESEND_COOLDOWN", time.Minute),
		},
		SMS: SMSConfig{
			APIURL:   getEnv("SMS_API_URL", ""),
			APIKey:   getEnv("SMS_API_KEY", ""),
			SenderID: getEnv("SMS_SENDER_ID", "CLBCRA"),
		},
		Email: EmailConfig{
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			From:           getEnv("EMAIL_FROM", "no-reply@clubcorra.com"),
			FromName:       getEnv("EMAIL_FROM_NAME", "Club Corra"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "club-corra-receipts"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleTokenInfoURL: getEnv("GOOGLE_TOKENINFO_URL", "https://oauth2.googleapis.com/tokeninfo"),
		},
		SeedAdminEmail:     getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword:  getEnv("SEED_ADMIN_PASSWORD", ""),
		EventsWebSocketURL: getEnv("EVENTS_WS_URL", "ws://localhost:8080/ws/admin"),
	}
}

// DSN builds the data source name for the configured driver
func (c DBConfig) DSN() (string, error) {
	switch c.Driver {
	case "mysql":
		// Database Source Name (DSN) for MySQL connection
		return c.User + ":" + c.Password + "@tcp(" + c.Host + ":" + c.Port + ")/" + c.Name + "?parseTime=true&charset=utf8mb4&loc=UTC", nil
	case "postgres":
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode), nil
	case "sqlite":
		return c.Name, nil
	default:
		return "", fmt.Errorf("unsupported DB_DRIVER %q", c.Driver)
	}
}

// getEnv returns the variable or a default when it is unset or empty
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// getEnvList splits a comma separated variable
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
