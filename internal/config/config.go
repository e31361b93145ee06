package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string

	// MaxUploadBytes caps the size of one CSV upload
	MaxUploadBytes int64
	// ReportTTL is how long a derived report stays fetchable after upload
	ReportTTL time.Duration
	// SweepInterval is how often expired reports are evicted
	SweepInterval time.Duration

	// Upload rate limiting, per client IP
	UploadRate  float64
	UploadBurst int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	maxUploadMB, err := strconv.Atoi(getEnv("MAX_UPLOAD_MB", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB: %w", err)
	}
	if maxUploadMB <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", maxUploadMB)
	}
	config.MaxUploadBytes = int64(maxUploadMB) * 1024 * 1024

	ttlMinutes, err := strconv.Atoi(getEnv("REPORT_TTL_MINUTES", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_TTL_MINUTES: %w", err)
	}
	if ttlMinutes <= 0 {
		return nil, fmt.Errorf("REPORT_TTL_MINUTES must be positive, got %d", ttlMinutes)
	}
	config.ReportTTL = time.Duration(ttlMinutes) * time.Minute

	// Sweep a few times per TTL window so expired reports do not linger
	config.SweepInterval = config.ReportTTL / 4
	if config.SweepInterval < time.Minute {
		config.SweepInterval = time.Minute
	}

	uploadRate, err := strconv.ParseFloat(getEnv("UPLOAD_RATE", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_RATE: %w", err)
	}
	if uploadRate <= 0 {
		return nil, fmt.Errorf("UPLOAD_RATE must be positive, got %v", uploadRate)
	}
	config.UploadRate = uploadRate

	uploadBurst, err := strconv.Atoi(getEnv("UPLOAD_BURST", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_BURST: %w", err)
	}
	if uploadBurst <= 0 {
		return nil, fmt.Errorf("UPLOAD_BURST must be positive, got %d", uploadBurst)
	}
	config.UploadBurst = uploadBurst

	// Trim spaces from allowed origins
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return config, nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
