package common

import (
	"os"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database     DatabaseConfig
	Server       ServerConfig
	Auth         AuthConfig
	Ingest       IngestConfig
	Payment      PaymentConfig
	Subscription SubscriptionConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URI         string
	Name        string
	DialTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Addr        string
	CORSOrigins string
}

// AuthConfig holds token and bootstrap-admin configuration
type AuthConfig struct {
	JWTSecret        string
	JWTRefreshSecret string
	TokenTTL         time.Duration
	RefreshTTL       time.Duration
	AdminEmail       string
	AdminPassword    string
}

// IngestConfig holds listing-sheet ingestion configuration
type IngestConfig struct {
	UploadDir      string
	ExcelDir       string
	ExtractTimeout time.Duration
	CityDomain     string
}

// PaymentConfig holds payment-gateway credentials
type PaymentConfig struct {
	KeyID     string
	KeySecret string
}

// SubscriptionConfig holds the subscription sweep schedule
type SubscriptionConfig struct {
	SweepSpec string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			URI:         getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Name:        getEnv("MONGODB_NAME", "property-broker"),
			DialTimeout: getEnvAsDuration("MONGODB_DIAL_TIMEOUT", 10*time.Second),
		},
		Server: ServerConfig{
			Addr:        ":" + getEnv("PORT", "5000"),
			CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		},
		Auth: AuthConfig{
			JWTSecret:        getEnv("JWT_SECRET", "secret"),
			JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", "refresh-secret"),
			TokenTTL:         getEnvAsDuration("JWT_EXPIRE", 7*24*time.Hour),
			RefreshTTL:       getEnvAsDuration("JWT_REFRESH_EXPIRE", 30*24*time.Hour),
			AdminEmail:       getEnv("ADMIN_EMAIL", "admin@propertybroker.com"),
			AdminPassword:    getEnv("ADMIN_PASSWORD", "admin123"),
		},
		Ingest: IngestConfig{
			UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
			ExcelDir:       getEnv("EXCEL_DIR", "./excel-data"),
			ExtractTimeout: getEnvAsDuration("PDF_TIMEOUT", 60*time.Second),
			CityDomain:     getEnv("CITY_DOMAIN", "south delhi"),
		},
		Payment: PaymentConfig{
			KeyID:     getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		},
		Subscription: SubscriptionConfig{
			SweepSpec: getEnv("SUBSCRIPTION_SWEEP_SPEC", "0 2 * * *"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.URI == "" {
		return NewAppError("CONFIG_ERROR", "MONGODB_URI is required", ErrInvalidInput)
	}
	if c.Auth.JWTSecret == "" {
		return NewAppError("CONFIG_ERROR", "JWT_SECRET is required", ErrInvalidInput)
	}
	if c.Server.Addr == ":" {
		return NewAppError("CONFIG_ERROR", "PORT is required", ErrInvalidInput)
	}
	return nil
}
