package utils

import (
	"testing"
	"time"
)

func TestPostgresPoolDefaults(t *testing.T) {
	pool := PostgresPoolConfig{}.withDefaults()

	if pool.MaxOpenConns != 25 {
		t.Fatalf("MaxOpenConns = %d, want 25", pool.MaxOpenConns)
	}
	if pool.ConnMaxLifetime != 30*time.Minute {
		t.Fatalf("ConnMaxLifetime = %v, want 30m", pool.ConnMaxLifetime)
	}
	if pool.PingTimeout != 5*time.Second {
		t.Fatalf("PingTimeout = %v, want 5s", pool.PingTimeout)
	}
}

func TestPostgresPoolDefaultsKeepOverrides(t *testing.T) {
	pool := PostgresPoolConfig{MaxOpenConns: 4, PingTimeout: time.Second}.withDefaults()

	if pool.MaxOpenConns != 4 {
		t.Fatalf("MaxOpenConns = %d, want 4", pool.MaxOpenConns)
	}
	if pool.PingTimeout != time.Second {
		t.Fatalf("PingTimeout = %v, want 1s", pool.PingTimeout)
	}
}
