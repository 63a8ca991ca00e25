package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort    string
	DatabaseType  string // sqlite, postgres or mysql
	DatabasePath  string // sqlite only
	DatabaseURL   string // postgres/mysql connection string
	JWTSecret     string
	TokenDuration time.Duration
	PresetsPath   string

	// Google OAuth sign-in
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectBase  string

	// Amazon SES notifications
	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is honoured if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:    getEnv("PORT", "8080"),
		DatabaseType:  getEnv("DB_TYPE", "sqlite"),
		DatabasePath:  getEnv("DB_PATH", "./kintree.db"),
		DatabaseURL:   getEnv("DB_URL", ""),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenDuration: getDuration("TOKEN_DURATION", 24*time.Hour),
		PresetsPath:   getEnv("PRESETS_PATH", "./presets"),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		OAuthRedirectBase:  getEnv("OAUTH_REDIRECT_BASE_URL", ""),

		AWSRegion:    getEnv("AWS_REGION", "eu-west-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "Kintree"),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:8080"),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration reads a duration environment variable or returns a default value
func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
