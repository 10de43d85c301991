package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr                  string
	DatabaseURL           string
	JWTSecret             string
	AuthDisabled          bool
	DataEncryptionKey     string
	Environment           string
	RunMigrations         bool
	MaxBodyBytes          int64
	MaxUploadBytes        int64
	RateLimitPerMinute    int
	StatusRefreshInterval time.Duration
	ExpiryThresholdDays   int
	CORSOrigins           []string
	LogLevel              string
	LogFormat             string
	MetricsEnabled        bool
	ShutdownTimeout       time.Duration
	RunSeed               bool
	SeedFolders           []string
	S3                    S3Config
	Email                 EmailConfig
}

type S3Config struct {
	Endpoint   string
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	PublicURL  string
	PresignTTL time.Duration
}

type EmailConfig struct {
	Enabled      bool
	From         string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPUseTLS   bool
	AlertTo      []string
}

// Enabled reports whether uploads can be written to object storage.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

func Load() Config {
	return Config{
		Addr:                  getEnv("APP_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		AuthDisabled:          getEnvBool("AUTH_DISABLED", false),
		DataEncryptionKey:     getEnv("DATA_ENCRYPTION_KEY", ""),
		Environment:           getEnv("APP_ENV", "development"),
		RunMigrations:         getEnvBool("RUN_MIGRATIONS", true),
		MaxBodyBytes:          int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		MaxUploadBytes:        int64(getEnvInt("MAX_UPLOAD_BYTES", 25<<20)),
		RateLimitPerMinute:    getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		StatusRefreshInterval: getEnvDuration("STATUS_REFRESH_INTERVAL", 24*time.Hour),
		ExpiryThresholdDays:   getEnvInt("EXPIRY_THRESHOLD_DAYS", 30),
		CORSOrigins:           getEnvList("CORS_ORIGINS"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "json"),
		MetricsEnabled:        getEnvBool("METRICS_ENABLED", true),
		ShutdownTimeout:       getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		RunSeed:               getEnvBool("RUN_SEED", false),
		SeedFolders:           getEnvListDefault("SEED_FOLDERS", []string{"Policies", "Contracts", "Training"}),
		S3: S3Config{
			Endpoint:   getEnv("S3_ENDPOINT", ""),
			Region:     getEnv("S3_REGION", "us-east-1"),
			Bucket:     getEnv("S3_BUCKET", ""),
			AccessKey:  getEnv("S3_ACCESS_KEY", ""),
			SecretKey:  getEnv("S3_SECRET_KEY", ""),
			PublicURL:  getEnv("S3_PUBLIC_URL", ""),
			PresignTTL: getEnvDuration("S3_PRESIGN_TTL", 15*time.Minute),
		},
		Email: EmailConfig{
			Enabled:      getEnvBool("EMAIL_ENABLED", false),
			From:         getEnv("EMAIL_FROM", "no-reply@example.com"),
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnvInt("SMTP_PORT", 587),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			SMTPUseTLS:   getEnvBool("SMTP_USE_TLS", true),
			AlertTo:      getEnvList("COMPLIANCE_ALERT_TO"),
		},
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

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvListDefault(key string, fallback []string) []string {
	if list := getEnvList(key); list != nil {
		return list
	}
	return fallback
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if !c.AuthDisabled && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required unless AUTH_DISABLED is set")
	}
	if c.Environment == "production" {
		if c.AuthDisabled {
			return fmt.Errorf("AUTH_DISABLED cannot be used in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.MaxUploadBytes < c.MaxBodyBytes {
		return fmt.Errorf("MAX_UPLOAD_BYTES must not be smaller than MAX_BODY_BYTES")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.ExpiryThresholdDays < 0 {
		return fmt.Errorf("EXPIRY_THRESHOLD_DAYS must not be negative")
	}
	if c.StatusRefreshInterval < 0 {
		return fmt.Errorf("STATUS_REFRESH_INTERVAL must not be negative")
	}
	if c.Email.Enabled && c.Email.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	if c.RunSeed {
		for _, name := range c.SeedFolders {
			if strings.Contains(name, "/") {
				return fmt.Errorf("SEED_FOLDERS entries must not contain '/': %q", name)
			}
		}
	}
	if c.S3.Enabled() && (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
		return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY must be set together")
	}
	return nil
}
