package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Env != "development" {
		t.Errorf("expected env=development, got %s", cfg.Env)
	}
	if cfg.DataDir == "" {
		t.Error("expected non-empty data dir")
	}
	if cfg.Provider.FetchWorkers <= 0 {
		t.Errorf("expected positive fetch workers, got %d", cfg.Provider.FetchWorkers)
	}
	if cfg.Database.Enabled {
		t.Error("database should be disabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("DB_MAX_CONNS", "42")
	t.Setenv("PROVIDER_RATE_PER_SEC", "2.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Env != "production" {
		t.Errorf("expected env=production, got %s", cfg.Env)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected log level=warn, got %s", cfg.LogLevel)
	}
	if cfg.Database.MaxConns != 42 {
		t.Errorf("expected max conns=42, got %d", cfg.Database.MaxConns)
	}
	if cfg.Provider.RatePerSec != 2.5 {
		t.Errorf("expected rate=2.5, got %v", cfg.Provider.RatePerSec)
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("ENV", "playground")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown ENV")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DB_ENABLED", "true")
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DB enabled without URL")
	}
}

func TestGetEnvAsIntFallback(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")
	if got := getEnvAsInt("SOME_INT", 7); got != 7 {
		t.Errorf("expected fallback 7, got %d", got)
	}
}
