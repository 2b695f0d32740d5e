package config

import (
	"testing"
	"time"
)

func TestLoadRequiresSecretKey(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when SECRET_KEY is unset")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8000" {
		t.Fatalf("HTTPAddr = %q, want :8000", cfg.HTTPAddr)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("AccessTokenTTL = %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Fatalf("RefreshTokenTTL = %v", cfg.RefreshTokenTTL)
	}
	if cfg.IsProduction() {
		t.Fatal("default env should not be production")
	}
	if cfg.MaxUploadSize != 10*1024*1024 {
		t.Fatalf("MaxUploadSize = %d", cfg.MaxUploadSize)
	}
	if cfg.MaxBodySize != 1<<20 {
		t.Fatalf("MaxBodySize = %d", cfg.MaxBodySize)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("CORS_ORIGINS", "https://a.example.com , https://b.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.AccessTokenTTL != 5*time.Minute {
		t.Fatalf("AccessTokenTTL = %v", cfg.AccessTokenTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("ACCESS_TOKEN_TTL", "banana")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}

func TestValidateProduction(t *testing.T) {
	t.Setenv("SECRET_KEY", "short")
	t.Setenv("ENV", "production")

	if _, err := Load(); err == nil {
		t.Fatal("expected short secret to be rejected in production")
	}

	t.Setenv("SECRET_KEY", "please-change-me-please-change-me-please")
	if _, err := Load(); err == nil {
		t.Fatal("expected placeholder secret to be rejected in production")
	}

	t.Setenv("SECRET_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("DEBUG", "true")
	if _, err := Load(); err == nil {
		t.Fatal("expected DEBUG=true to be rejected in production")
	}

	t.Setenv("DEBUG", "false")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.IsProduction() {
		t.Fatal("ENV=production should report IsProduction")
	}
}

func TestVerifyURLMustCarryTokenParam(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("VERIFY_EMAIL_BASE_URL", "http://localhost:8000/verify-email")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for base URL without token=")
	}
}
