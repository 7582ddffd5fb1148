package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Tenants.DatabasePrefix != "tenant_" {
		t.Errorf("expected prefix tenant_, got %s", cfg.Tenants.DatabasePrefix)
	}
	if cfg.Tenants.DialTimeout != 5*time.Second {
		t.Errorf("expected dial timeout 5s, got %v", cfg.Tenants.DialTimeout)
	}
	if cfg.Directory.MaxConns != 5 {
		t.Errorf("expected directory max_conns 5, got %d", cfg.Directory.MaxConns)
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "test.yaml")

	content := `
server:
  port: "9090"
directory:
  max_conns: 20
tenants:
  database_prefix: "gym_"
  dev_override_slug: "acme-gym"
logging:
  level: "debug"
`
	if err := os.WriteFile(yamlPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Defaults()
	if err := loadYAML(&cfg, yamlPath); err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Directory.MaxConns != 20 {
		t.Errorf("expected max_conns 20, got %d", cfg.Directory.MaxConns)
	}
	if cfg.Tenants.DatabasePrefix != "gym_" {
		t.Errorf("expected prefix gym_, got %s", cfg.Tenants.DatabasePrefix)
	}
	if cfg.Tenants.DevOverrideSlug != "acme-gym" {
		t.Errorf("expected dev override acme-gym, got %s", cfg.Tenants.DevOverrideSlug)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
	// Unchanged fields keep defaults
	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Errorf("expected default NATS URL, got %s", cfg.NATS.URL)
	}
}

func TestLoadYAMLMissing(t *testing.T) {
	cfg := Defaults()
	err := loadYAML(&cfg, "/nonexistent/path.yaml")
	if err != nil {
		t.Errorf("missing YAML should not error, got %v", err)
	}
}

func TestEnvOverride(t *testing.T) {
	cfg := Defaults()

	t.Setenv("FITSTACK_PORT", "7070")
	t.Setenv("FITSTACK_DIRECTORY_DSN", "postgres://test:test@db:5432/system")
	t.Setenv("FITSTACK_TENANT_MAX_CONNS", "25")
	t.Setenv("FITSTACK_DEV_TENANT", "acme-gym")
	t.Setenv("FITSTACK_DEV_HOSTS", "localhost, *.tunnel.dev")
	t.Setenv("FITSTACK_CACHE_TTL", "1m")

	loadEnv(&cfg)

	if cfg.Server.Port != "7070" {
		t.Errorf("expected port 7070, got %s", cfg.Server.Port)
	}
	if cfg.Directory.DSN != "postgres://test:test@db:5432/system" {
		t.Errorf("unexpected directory dsn %s", cfg.Directory.DSN)
	}
	if cfg.Tenants.MaxConns != 25 {
		t.Errorf("expected tenant max_conns 25, got %d", cfg.Tenants.MaxConns)
	}
	if cfg.Tenants.DevOverrideSlug != "acme-gym" {
		t.Errorf("expected dev override acme-gym, got %s", cfg.Tenants.DevOverrideSlug)
	}
	if len(cfg.Tenants.DevHosts) != 2 || cfg.Tenants.DevHosts[1] != "*.tunnel.dev" {
		t.Errorf("unexpected dev hosts %v", cfg.Tenants.DevHosts)
	}
	if cfg.Cache.TTL != time.Minute {
		t.Errorf("expected cache ttl 1m, got %v", cfg.Cache.TTL)
	}
}

func TestValidateRequiredFields(t *testing.T) {
	cfg := Defaults()
	cfg.Directory.DSN = ""
	if err := validate(&cfg); err == nil {
		t.Error("expected error for missing directory dsn")
	}

	cfg = Defaults()
	cfg.Tenants.DatabasePrefix = ""
	if err := validate(&cfg); err == nil {
		t.Error("expected error for missing database prefix")
	}

	cfg = Defaults()
	cfg.Auth.Enabled = true
	cfg.Auth.Secret = ""
	if err := validate(&cfg); err == nil {
		t.Error("expected error for enabled auth without secret")
	}

	cfg = Defaults()
	cfg.Auth.Secret = "test-secret-key-must-be-long-enough"
	if err := validate(&cfg); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}
