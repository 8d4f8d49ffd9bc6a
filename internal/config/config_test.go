package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("APP_ENV", "test")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.JWTAccessExpiry != 15*time.Minute {
		t.Fatalf("expected 15m access expiry, got %v", cfg.JWTAccessExpiry)
	}
	if cfg.InactivityDays != 30 {
		t.Fatalf("expected 30 inactivity days, got %d", cfg.InactivityDays)
	}
	if cfg.LocalCurrency != "RUB" {
		t.Fatalf("expected RUB local currency, got %q", cfg.LocalCurrency)
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET validation error, got %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("APP_ENV", "test")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("PAGE_SIZE", "25")
	t.Setenv("CURRENCY_API_URL", "http://rates.local")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if cfg.UpstreamTimeout != 3*time.Second {
		t.Fatalf("expected 3s upstream timeout, got %v", cfg.UpstreamTimeout)
	}
	if cfg.PageSize != 25 {
		t.Fatalf("expected page size 25, got %d", cfg.PageSize)
	}
	if cfg.CurrencyAPIURL != "http://rates.local/" {
		t.Fatalf("expected trailing slash on currency url, got %q", cfg.CurrencyAPIURL)
	}
	if !strings.Contains(cfg.DSN(), "password=pw") {
		t.Fatalf("dsn missing password: %q", cfg.DSN())
	}
}
