package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "fitstack.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// The YAML file is optional; a missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "FITSTACK_PORT")
	setString(&cfg.Server.CORSOrigin, "FITSTACK_CORS_ORIGIN")

	setString(&cfg.Directory.DSN, "FITSTACK_DIRECTORY_DSN")
	setInt32(&cfg.Directory.MaxConns, "FITSTACK_DIRECTORY_MAX_CONNS")
	setInt32(&cfg.Directory.MinConns, "FITSTACK_DIRECTORY_MIN_CONNS")
	setDuration(&cfg.Directory.MaxConnLifetime, "FITSTACK_DIRECTORY_MAX_CONN_LIFETIME")
	setDuration(&cfg.Directory.MaxConnIdleTime, "FITSTACK_DIRECTORY_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Directory.HealthCheck, "FITSTACK_DIRECTORY_HEALTH_CHECK")

	setString(&cfg.Tenants.BaseDSN, "FITSTACK_TENANT_BASE_DSN")
	setString(&cfg.Tenants.DatabasePrefix, "FITSTACK_TENANT_DB_PREFIX")
	setInt32(&cfg.Tenants.MaxConns, "FITSTACK_TENANT_MAX_CONNS")
	setInt32(&cfg.Tenants.MinConns, "FITSTACK_TENANT_MIN_CONNS")
	setDuration(&cfg.Tenants.MaxConnLifetime, "FITSTACK_TENANT_MAX_CONN_LIFETIME")
	setDuration(&cfg.Tenants.MaxConnIdleTime, "FITSTACK_TENANT_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Tenants.HealthCheck, "FITSTACK_TENANT_HEALTH_CHECK")
	setDuration(&cfg.Tenants.DialTimeout, "FITSTACK_TENANT_DIAL_TIMEOUT")
	setString(&cfg.Tenants.DevOverrideSlug, "FITSTACK_DEV_TENANT")
	setStringSlice(&cfg.Tenants.DevHosts, "FITSTACK_DEV_HOSTS")

	setBool(&cfg.Auth.Enabled, "FITSTACK_AUTH_ENABLED")
	setString(&cfg.Auth.Secret, "FITSTACK_AUTH_SECRET")

	setString(&cfg.IdP.BaseURL, "FITSTACK_IDP_URL")
	setString(&cfg.IdP.APIKey, "FITSTACK_IDP_API_KEY")
	setDuration(&cfg.IdP.Timeout, "FITSTACK_IDP_TIMEOUT")

	setString(&cfg.Logging.Level, "FITSTACK_LOG_LEVEL")
	setString(&cfg.Logging.Service, "FITSTACK_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "FITSTACK_LOG_ASYNC")

	setInt64(&cfg.Cache.MaxSizeMB, "FITSTACK_CACHE_SIZE_MB")
	setDuration(&cfg.Cache.TTL, "FITSTACK_CACHE_TTL")

	setBool(&cfg.NATS.Enabled, "FITSTACK_NATS_ENABLED")
	setString(&cfg.NATS.URL, "NATS_URL")

	setBool(&cfg.Telemetry.Enabled, "FITSTACK_OTEL_ENABLED")
	setString(&cfg.Telemetry.Endpoint, "FITSTACK_OTEL_ENDPOINT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Directory.DSN == "" {
		return errors.New("directory.dsn is required")
	}
	if cfg.Tenants.BaseDSN == "" {
		return errors.New("tenants.base_dsn is required")
	}
	if cfg.Tenants.DatabasePrefix == "" {
		return errors.New("tenants.database_prefix is required")
	}
	if cfg.Directory.MaxConns < 1 {
		return errors.New("directory.max_conns must be >= 1")
	}
	if cfg.Tenants.MaxConns < 1 {
		return errors.New("tenants.max_conns must be >= 1")
	}
	if cfg.Tenants.DialTimeout <= 0 {
		return errors.New("tenants.dial_timeout must be positive")
	}
	if cfg.Auth.Enabled && cfg.Auth.Secret == "" {
		return errors.New("auth.secret is required when auth is enabled")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		*dst = out
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
