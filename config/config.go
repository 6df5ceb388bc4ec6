package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPHost              string
	HTTPPort              string
	MySQLDSN              string
	SMTPHost              string
	SMTPPort              string
	SMTPUsername          string
	SMTPPassword          string
	SMTPFrom              string
	TemplatesDir          string
	ConfirmExpiryEnforced bool
	PruneInterval         time.Duration
	LogLevel              string
	LogFormat             string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignores error if not found)
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	smtpHost := os.Getenv("SMTP_HOST")
	if smtpHost == "" {
		return nil, errors.New("SMTP_HOST environment variable is required")
	}

	return &Config{
		HTTPHost:              getEnv("HTTP_HOST", ""),
		HTTPPort:              getEnv("HTTP_PORT", "8080"),
		MySQLDSN:              mysqlDSN,
		SMTPHost:              smtpHost,
		SMTPPort:              getEnv("SMTP_PORT", "587"),
		SMTPUsername:          getEnv("SMTP_USERNAME", ""),
		SMTPPassword:          getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:              getEnv("SMTP_FROM", "no-reply@localhost"),
		TemplatesDir:          getEnv("TEMPLATES_DIR", "web/templates"),
		ConfirmExpiryEnforced: getBoolEnv("CONFIRM_EXPIRY_ENFORCED", true),
		PruneInterval:         getDurationEnv("CONFIRM_PRUNE_INTERVAL", 0),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "text"),
	}, nil
}

func (c *Config) DSN() string {
	return c.MySQLDSN
}

func (c *Config) SMTPAddr() string {
	return c.SMTPHost + ":" + c.SMTPPort
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
