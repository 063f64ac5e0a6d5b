package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment
// variables. Provider credentials are carried here and handed to each client
// constructor at startup; nothing configures itself at import time.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	RedisURL    string
	JWTSecret   string

	// PublicBaseURL is the externally reachable base of this service; the
	// inference provider calls back on it.
	PublicBaseURL string

	FalAPIKey        string
	FalBaseURL       string
	FalWebhookSecret string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	AllowedOrigins []string

	DBMaxConns       int
	DBConnectTimeout time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int

	SubmitDedupeTTL time.Duration
	JobStaleAfter   time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		Port:                getEnv("PORT", "8080"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisURL:            os.Getenv("REDIS_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		PublicBaseURL:       os.Getenv("PUBLIC_BASE_URL"),
		FalAPIKey:           os.Getenv("FAL_API_KEY"),
		FalBaseURL:          getEnv("FAL_BASE_URL", "https://queue.fal.run"),
		FalWebhookSecret:    os.Getenv("FAL_WEBHOOK_SECRET"),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		AllowedOrigins:      splitList(os.Getenv("ALLOWED_ORIGINS")),
		DBMaxConns:          getEnvInt("DB_MAX_CONNS", 10),
		DBConnectTimeout:    time.Second * time.Duration(getEnvInt("DB_CONNECT_TIMEOUT_SECONDS", 10)),
		HTTPReadTimeout:     time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:    time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:     time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:     getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		SubmitDedupeTTL:     time.Second * time.Duration(getEnvInt("SUBMIT_DEDUPE_TTL_SECONDS", 600)),
		JobStaleAfter:       time.Second * time.Duration(getEnvInt("JOB_STALE_AFTER_SECONDS", 7200)),
	}

	for _, required := range []struct {
		name  string
		value string
	}{
		{"DATABASE_URL", cfg.DatabaseURL},
		{"JWT_SECRET", cfg.JWTSecret},
		{"PUBLIC_BASE_URL", cfg.PublicBaseURL},
		{"FAL_API_KEY", cfg.FalAPIKey},
		{"CLOUDINARY_CLOUD_NAME", cfg.CloudinaryCloudName},
		{"CLOUDINARY_API_KEY", cfg.CloudinaryAPIKey},
		{"CLOUDINARY_API_SECRET", cfg.CloudinaryAPISecret},
	} {
		if required.value == "" {
			return nil, fmt.Errorf("%s is required", required.name)
		}
	}

	return cfg, nil
}

// WebhookURL returns the callback URL handed to the inference provider.
func (c *Config) WebhookURL() string {
	return strings.TrimRight(c.PublicBaseURL, "/") + "/v1/webhooks/fal"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
