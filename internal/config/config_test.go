package config_test

import (
	"log/slog"
	"testing"
	"time"

	"roadside-booking-api/internal/config"
)

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := config.Load(); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("NOTIFY_FUNCTION_URL", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.JWTSecret != "s3cret" {
		t.Errorf("secret: %q", cfg.Auth.JWTSecret)
	}
	if cfg.Redis.CatalogTTL != 5*time.Minute {
		t.Errorf("ttl: %v", cfg.Redis.CatalogTTL)
	}
	if got := cfg.NotifyURL(); got != "http://localhost:9000/functions/v1/send-appointment-confirmation" {
		t.Errorf("notify url: %q", got)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := (config.Log{Level: in}).SlogLevel(); got != want {
			t.Errorf("%q: got %v want %v", in, got, want)
		}
	}
}
