package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Environment        string
	ServerPort         int
	LogLevel           string
	CORSAllowedOrigins []string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisURL string
	CacheTTL time.Duration

	JWTSecret   string
	TokenExpiry time.Duration

	MailgunDomain string
	MailgunAPIKey string
	EmailFrom     string

	AnalyticsInterval time.Duration
	AuthRateLimit     int
	AuthRateWindow    time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	cacheTTLSecs, err := strconv.Atoi(getEnv("CACHE_TTL_SECONDS", "3600"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL_SECONDS: %w", err)
	}

	tokenExpiryMins, err := strconv.Atoi(getEnv("TOKEN_EXPIRY_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_EXPIRY_MINUTES: %w", err)
	}

	analyticsMins, err := strconv.Atoi(getEnv("ANALYTICS_INTERVAL_MINUTES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYTICS_INTERVAL_MINUTES: %w", err)
	}

	authRateLimit, err := strconv.Atoi(getEnv("AUTH_RATE_LIMIT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_RATE_LIMIT: %w", err)
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  port,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            dbPort,
		DBUser:            getEnv("DB_USER", "taskboard"),
		DBPassword:        getEnv("DB_PASSWORD", "dev"),
		DBName:            getEnv("DB_NAME", "taskboard"),
		DBSSLMode:         getEnv("DB_SSLMODE", "disable"),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379"),
		CacheTTL:          time.Duration(cacheTTLSecs) * time.Second,
		JWTSecret:         getEnv("JWT_SECRET", ""),
		TokenExpiry:       time.Duration(tokenExpiryMins) * time.Minute,
		MailgunDomain:     getEnv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey:     getEnv("MAILGUN_API_KEY", ""),
		EmailFrom:         getEnv("EMAIL_FROM", "Task Management <no-reply@taskboard.dev>"),
		AnalyticsInterval: time.Duration(analyticsMins) * time.Minute,
		AuthRateLimit:     authRateLimit,
		AuthRateWindow:    time.Minute,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
