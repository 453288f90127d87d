package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.Server.Addr(); got != "0.0.0.0:8080" {
		t.Fatalf("addr = %q", got)
	}
	if cfg.Database.Enabled {
		t.Fatal("database should be disabled by default")
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Fatalf("token ttl = %v", cfg.Auth.TokenTTL)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.Burst != 20 {
		t.Fatalf("unexpected rate limit defaults %+v", cfg.RateLimit)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing auth secret")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: 9090
auth:
  secret: file-secret
  issuer: campus
cors:
  allowed_origins:
    - https://app.campus.edu
keepalive:
  enabled: true
  base_url: https://workstudy.campus.edu
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.Auth.Secret != "file-secret" || cfg.Auth.Issuer != "campus" {
		t.Fatalf("unexpected auth config %+v", cfg.Auth)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "https://app.campus.edu" {
		t.Fatalf("unexpected cors config %+v", cfg.CORS)
	}
	if !cfg.KeepAlive.Enabled || cfg.KeepAlive.BaseURL != "https://workstudy.campus.edu" {
		t.Fatalf("unexpected keepalive config %+v", cfg.KeepAlive)
	}
	// File values keep the untouched defaults around them.
	if cfg.Server.Host != "0.0.0.0" {
		t.Fatalf("host = %q", cfg.Server.Host)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: 9090
auth:
  secret: file-secret
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", "3000")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("DATABASE_ENABLED", "true")
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.Auth.Secret != "env-secret" {
		t.Fatalf("secret = %q", cfg.Auth.Secret)
	}
	if !cfg.Database.Enabled || cfg.Database.Host != "db.internal" {
		t.Fatalf("unexpected database config %+v", cfg.Database)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level = %q", cfg.Logging.Level)
	}
}

func TestDatabaseDSN(t *testing.T) {
	c := DatabaseConfig{Host: "localhost", Port: 5432, User: "u", Password: "p", Name: "workstudy", SSLMode: "disable"}
	want := "host=localhost port=5432 user=u password=p dbname=workstudy sslmode=disable"
	if got := c.DSN(); got != want {
		t.Fatalf("dsn = %q, want %q", got, want)
	}
}
