package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "")
	t.Setenv("AI_TIMEOUT", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("PHONE_REGION", "")

	cfg := Load()
	if cfg.JWTExpiry != 24*time.Hour {
		t.Fatalf("JWTExpiry = %v, want 24h", cfg.JWTExpiry)
	}
	if cfg.AITimeout != 60*time.Second {
		t.Fatalf("AITimeout = %v, want 60s", cfg.AITimeout)
	}
	if cfg.StoreDriver != "postgres" || cfg.StorageDriver != "local" || cfg.PhoneRegion != "IN" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.MaxUploadBytes != 10*1024*1024 {
		t.Fatalf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("AI_TIMEOUT", "not-a-duration")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "-5")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("DB_HOST", "db.internal")

	cfg := Load()
	if cfg.JWTExpiry != 2*time.Hour {
		t.Fatalf("JWTExpiry = %v, want 2h", cfg.JWTExpiry)
	}
	if cfg.AITimeout != 60*time.Second {
		t.Fatalf("invalid duration should fall back, got %v", cfg.AITimeout)
	}
	if cfg.RateLimitPerMinute != 60 {
		t.Fatalf("non-positive limit should fall back, got %d", cfg.RateLimitPerMinute)
	}
	if !cfg.MinioUseSSL {
		t.Fatalf("MINIO_USE_SSL not applied")
	}
	if want := "host=db.internal"; cfg.DSN()[:len(want)] != want {
		t.Fatalf("unexpected DSN %q", cfg.DSN())
	}
}
