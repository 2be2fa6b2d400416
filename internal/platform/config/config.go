package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                       string
	Environment                string
	DatabaseURL                string
	MigrationsDir              string
	JWTSecret                  string
	AdminEmail                 string
	AdminPassword              string
	DataEncryptionKey          string
	AFPRate                    string
	ARSRate                    string
	EmailFrom                  string
	EmailEnabled               bool
	SMTPHost                   string
	SMTPPort                   int
	SMTPUser                   string
	SMTPPassword               string
	SMTPUseTLS                 bool
	RunMigrations              bool
	RunSeed                    bool
	MaxBodyBytes               int64
	RateLimitPerMinute         int
	EncryptionBackfillInterval time.Duration
	MetricsEnabled             bool
}

func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:                       getEnv("APP_ADDR", ":8080"),
		Environment:                getEnv("APP_ENV", "development"),
		DatabaseURL:                getEnv("DATABASE_URL", ""),
		MigrationsDir:              getEnv("MIGRATIONS_DIR", "migrations"),
		JWTSecret:                  getEnv("JWT_SECRET", ""),
		AdminEmail:                 getEnv("ADMIN_EMAIL", ""),
		AdminPassword:              getEnv("ADMIN_PASSWORD", ""),
		DataEncryptionKey:          getEnv("DATA_ENCRYPTION_KEY", ""),
		AFPRate:                    getEnv("PAYROLL_AFP_RATE", ""),
		ARSRate:                    getEnv("PAYROLL_ARS_RATE", ""),
		EmailFrom:                  getEnv("EMAIL_FROM", "no-reply@example.com"),
		EmailEnabled:               getEnvBool("EMAIL_ENABLED", false),
		SMTPHost:                   getEnv("SMTP_HOST", ""),
		SMTPPort:                   getEnvInt("SMTP_PORT", 587),
		SMTPUser:                   getEnv("SMTP_USER", ""),
		SMTPPassword:               getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:                 getEnvBool("SMTP_USE_TLS", true),
		RunMigrations:              getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:                    getEnvBool("RUN_SEED", true),
		MaxBodyBytes:               int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute:         getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		EncryptionBackfillInterval: getEnvDuration("ENCRYPTION_BACKFILL_INTERVAL", 24*time.Hour),
		MetricsEnabled:             getEnvBool("METRICS_ENABLED", true),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.MigrationsDir) == "" {
		return fmt.Errorf("MIGRATIONS_DIR is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.AdminEmail) == "" || strings.TrimSpace(c.AdminPassword) == "" {
			return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	return nil
}
