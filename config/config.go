package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port        string
	AppEnv      string
	AppURL      string
	CORSOrigins string

	DatabaseURL string

	JWTSecret string

	AdminUsername     string
	AdminPasswordHash string // bcrypt hash

	StripeSecretKey     string
	StripeWebhookSecret string
	StripeAPIBase       string

	CleanupEnabled       bool
	CleanupIntervalHours int
	GuestRetentionDays   int
}

// AppConfig is the process-wide configuration, set once by LoadConfig.
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	AppConfig = &Config{
		Port:        getEnv("PORT", "3000"),
		AppEnv:      getEnv("APP_ENV", "development"),
		AppURL:      getEnv("APP_URL", "http://localhost:3000"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripeAPIBase:       getEnv("STRIPE_API_BASE", "https://api.stripe.com"),

		CleanupEnabled:       getEnvBool("CLEANUP_ENABLED", true),
		CleanupIntervalHours: getEnvInt("CLEANUP_INTERVAL_HOURS", 6),
		GuestRetentionDays:   getEnvInt("GUEST_RETENTION_DAYS", 30),
	}

	validate(AppConfig)
	return AppConfig
}

func validate(cfg *Config) {
	if cfg.JWTSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	if cfg.AppEnv == "production" {
		if cfg.StripeSecretKey == "" {
			log.Println("WARNING: STRIPE_SECRET_KEY not set; billing endpoints will fail")
		}
		if cfg.AdminPasswordHash == "" {
			log.Println("WARNING: ADMIN_PASSWORD_HASH not set; admin login disabled")
		}
		if cfg.CORSOrigins == "http://localhost:3000" {
			log.Println("WARNING: CORS_ORIGINS not properly configured for production")
		}
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}
