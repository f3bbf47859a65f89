package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "DB_DRIVER", "PIPELINE_API_KEY", "LARGE_TRANSACTION_THRESHOLD",
		"NOTIFICATION_LIMIT", "AMQP_URL", "CORS_ORIGINS", "JWT_EXPIRES_IN",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.DBDriver != "postgres" {
		t.Errorf("expected postgres driver, got %s", cfg.DBDriver)
	}
	if cfg.LargeTransactionThreshold != 1000000 {
		t.Errorf("expected threshold 1000000, got %d", cfg.LargeTransactionThreshold)
	}
	if cfg.NotificationLimit != 10 {
		t.Errorf("expected notification limit 10, got %d", cfg.NotificationLimit)
	}
	if cfg.AMQPURL != "" {
		t.Errorf("expected AMQP disabled by default, got %q", cfg.AMQPURL)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("expected wildcard CORS origin, got %v", cfg.CORSOrigins)
	}
	if cfg.JWTExpirationDur != 24*time.Hour {
		t.Errorf("expected 24h JWT expiry, got %v", cfg.JWTExpirationDur)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("LARGE_TRANSACTION_THRESHOLD", "500000")
	t.Setenv("NOTIFICATION_LIMIT", "25")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://app.example.com")
	t.Setenv("JWT_EXPIRES_IN", "2h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DBDriver != "sqlite" {
		t.Errorf("expected sqlite driver, got %s", cfg.DBDriver)
	}
	if cfg.LargeTransactionThreshold != 500000 {
		t.Errorf("expected threshold 500000, got %d", cfg.LargeTransactionThreshold)
	}
	if cfg.NotificationLimit != 25 {
		t.Errorf("expected limit 25, got %d", cfg.NotificationLimit)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://app.example.com" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSOrigins)
	}
	if cfg.JWTExpirationDur != 2*time.Hour {
		t.Errorf("expected 2h JWT expiry, got %v", cfg.JWTExpirationDur)
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("LARGE_TRANSACTION_THRESHOLD", "lots")
	t.Setenv("NOTIFICATION_LIMIT", "-3")
	t.Setenv("JWT_EXPIRES_IN", "forever")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LargeTransactionThreshold != 1000000 {
		t.Errorf("expected fallback threshold, got %d", cfg.LargeTransactionThreshold)
	}
	if cfg.NotificationLimit != 10 {
		t.Errorf("expected fallback limit, got %d", cfg.NotificationLimit)
	}
	if cfg.JWTExpirationDur != 24*time.Hour {
		t.Errorf("expected fallback expiry, got %v", cfg.JWTExpirationDur)
	}
}
