// internal/config/config.go
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"investpay/internal/gateway/korapay"
	"investpay/pkg/db"
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort string
	DB         db.Config
	Korapay    korapay.Config
}

// LoadConfig loads configuration from a .env file (if present) and the
// environment. It returns an AppConfig instance or an error if any required
// variable is missing or invalid.
func LoadConfig() (*AppConfig, error) {
	// A missing .env file is fine in production; the environment wins either way.
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on system environment variables")
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	secretKey := os.Getenv("KORAPAY_SECRET_KEY")
	if secretKey == "" {
		return nil, fmt.Errorf("KORAPAY_SECRET_KEY is required")
	}

	gatewayTimeoutSecs, err := strconv.Atoi(getEnv("KORAPAY_TIMEOUT_SECONDS", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid KORAPAY_TIMEOUT_SECONDS: %w", err)
	}

	return &AppConfig{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		DB: db.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "investpaydb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Korapay: korapay.Config{
			SecretKey:       secretKey,
			BaseURL:         getEnv("KORAPAY_BASE_URL", korapay.DefaultBaseURL),
			NotificationURL: getEnv("KORAPAY_NOTIFICATION_URL", ""),
			Timeout:         time.Duration(gatewayTimeoutSecs) * time.Second,
		},
	}, nil
}

// getEnv returns the environment variable's value or a fallback.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
