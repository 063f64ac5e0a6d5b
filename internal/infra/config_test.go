package infra

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PUBLIC_BASE_URL", "https://app.example.com")
	t.Setenv("FAL_API_KEY", "fal-key")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo")
	t.Setenv("CLOUDINARY_API_KEY", "cloud-key")
	t.Setenv("CLOUDINARY_API_SECRET", "cloud-secret")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.FalBaseURL != "https://queue.fal.run" {
		t.Fatalf("FalBaseURL = %q", cfg.FalBaseURL)
	}
	if cfg.JobStaleAfter != 2*time.Hour {
		t.Fatalf("JobStaleAfter = %v, want 2h", cfg.JobStaleAfter)
	}
	if cfg.SubmitDedupeTTL != 10*time.Minute {
		t.Fatalf("SubmitDedupeTTL = %v, want 10m", cfg.SubmitDedupeTTL)
	}
	if cfg.DBMaxConns != 10 {
		t.Fatalf("DBMaxConns = %d, want 10", cfg.DBMaxConns)
	}
	if cfg.DBConnectTimeout != 10*time.Second {
		t.Fatalf("DBConnectTimeout = %v, want 10s", cfg.DBConnectTimeout)
	}
}

func TestLoadConfigMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FAL_API_KEY", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when FAL_API_KEY missing")
	}
}

func TestConfigWebhookURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PUBLIC_BASE_URL", "https://app.example.com/")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	want := "https://app.example.com/v1/webhooks/fal"
	if got := cfg.WebhookURL(); got != want {
		t.Fatalf("WebhookURL() = %q, want %q", got, want)
	}
}

func TestLoadConfigParsesOrigins(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com ,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("AllowedOrigins = %#v", cfg.AllowedOrigins)
	}
	if cfg.AllowedOrigins[1] != "https://staging.example.com" {
		t.Fatalf("AllowedOrigins[1] = %q", cfg.AllowedOrigins[1])
	}
}
