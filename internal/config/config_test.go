// AngelaMos | 2026
// config_test.go

package config

import (
	"path/filepath"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/pawmart")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
}

func TestLoad_EnvOnlyWithoutConfigFile(t *testing.T) {
	setRequiredEnv(t)

	missing := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := Load(missing)
	if err != nil {
		t.Fatalf("Load without a config file: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
	if cfg.JWT.AccessTTL != "1h" {
		t.Errorf("JWT.AccessTTL = %q, want default 1h", cfg.JWT.AccessTTL)
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_ACCESS_TTL", "30m")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.JWT.AccessTTL != "30m" {
		t.Errorf("JWT.AccessTTL = %q, want 30m", cfg.JWT.AccessTTL)
	}
}

func TestLoad_MissingRequiredFails(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/pawmart")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(""); err == nil {
		t.Fatal("Load must fail without JWT_SECRET")
	}
}
