package config

import (
	"strings"
	"testing"
	"time"
)

func validBase() Config {
	return Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "userauth"},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret"},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_MissingSigningSecretIsFatal(t *testing.T) {
	c := validBase()
	c.Auth.JWTSecret = ""
	err := c.Validate()
	if err == nil {
		t.Fatalf("expected error for missing JWT_SECRET")
	}
	if !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET in error, got %v", err)
	}
}

func TestValidate_AppliesTokenAndHashDefaults(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Auth.AccessTokenTTL != 5*time.Minute {
		t.Fatalf("expected 5m access ttl, got %v", c.Auth.AccessTokenTTL)
	}
	if c.Auth.RefreshTokenTTL != 3*time.Hour {
		t.Fatalf("expected 3h refresh ttl, got %v", c.Auth.RefreshTokenTTL)
	}
	if c.Auth.BcryptCost != 16 {
		t.Fatalf("expected bcrypt cost 16, got %d", c.Auth.BcryptCost)
	}
	if len(c.Auth.AllowedRoles) != 2 {
		t.Fatalf("expected default roles, got %v", c.Auth.AllowedRoles)
	}
	if c.Email.ConfirmTokenTTL != 24*time.Hour {
		t.Fatalf("expected 24h confirm ttl, got %v", c.Email.ConfirmTokenTTL)
	}
	if !strings.Contains(c.Email.ConfirmURLTemplate, "{token}") {
		t.Fatalf("expected default confirm url template, got %q", c.Email.ConfirmURLTemplate)
	}
}

func TestValidate_RefreshMustOutliveAccess(t *testing.T) {
	c := validBase()
	c.Auth.AccessTokenTTL = time.Hour
	c.Auth.RefreshTokenTTL = time.Minute
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error when refresh ttl <= access ttl")
	}
}

func TestValidate_BcryptCostBounds(t *testing.T) {
	c := validBase()
	c.Auth.BcryptCost = 32
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for out-of-range cost")
	}
}

func TestValidate_ProductionRequiresExplicitConfig(t *testing.T) {
	c := validBase()
	c.App.Env = "production"
	err := c.Validate()
	if err == nil {
		t.Fatalf("expected error for production without sslmode/issuer/template")
	}
	for _, want := range []string{"DB_SSLMODE", "JWT_ISSUER", "CONFIRM_URL_TEMPLATE"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %s in error, got %v", want, err)
		}
	}
}

func TestValidate_SeedUserNeedsPasswordAndEmail(t *testing.T) {
	c := validBase()
	c.Seed.Username = "root"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for incomplete seed config")
	}
}

func TestValidate_LocalDefaultsSSLMode(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
}
