package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" {
		t.Fatalf("unexpected server defaults: port=%q env=%q", cfg.Port, cfg.Env)
	}
	if cfg.AdminRole != "superadmin" || cfg.ProtectedUsername != "admin" {
		t.Fatalf("unexpected access defaults: role=%q protected=%q", cfg.AdminRole, cfg.ProtectedUsername)
	}
	if cfg.TokenTTL != 24*time.Hour || cfg.Redis.ListingTTL != 5*time.Minute {
		t.Fatalf("unexpected durations: token=%s listing=%s", cfg.TokenTTL, cfg.Redis.ListingTTL)
	}
	if cfg.Postgres.MaxOpenConns != 25 || cfg.Audit.Workers != 4 || cfg.BcryptCost != 10 {
		t.Fatalf("unexpected numeric defaults: %+v", cfg)
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":                      "production",
		"JWT_SECRET":               "s3cret",
		"ADMIN_ROLE":               "admin",
		"DATABASE_URL":             "postgres://app@db/users",
		"DB_MAX_LIFETIME":          "90s",
		"AUDIT_WORKERS":            "16",
		"BOOTSTRAP_ADMIN_USERNAME": "root",
		"BOOTSTRAP_ADMIN_EMAIL":    "root@example.com",
		"BOOTSTRAP_ADMIN_PASSWORD": "Sup3r-secret-pass",
	}))
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}

	if cfg.AdminRole != "admin" || cfg.Postgres.DSN != "postgres://app@db/users" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Postgres.ConnMaxLifetime != 90*time.Second || cfg.Audit.Workers != 16 {
		t.Fatalf("overrides not applied: lifetime=%s workers=%d", cfg.Postgres.ConnMaxLifetime, cfg.Audit.Workers)
	}
	if cfg.Bootstrap.Username != "root" {
		t.Fatalf("bootstrap not loaded: %+v", cfg.Bootstrap)
	}
}

func TestLoadFrom_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret in production", map[string]string{"ENV": "production"}},
		{"partial bootstrap", map[string]string{"BOOTSTRAP_ADMIN_USERNAME": "root"}},
		{"bad duration", map[string]string{"TOKEN_TTL": "forever"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadFrom(context.Background(), envconfig.MapLookuper(tc.env)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
