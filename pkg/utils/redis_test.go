package utils

import (
	"context"
	"testing"
	"time"
)

func TestRedisConfigDefaults(t *testing.T) {
	cfg := RedisConfig{Addr: "localhost:6379"}.withDefaults()

	if cfg.DialTimeout != 3*time.Second {
		t.Fatalf("DialTimeout = %v, want 3s", cfg.DialTimeout)
	}
	if cfg.PoolSize != 20 {
		t.Fatalf("PoolSize = %d, want 20", cfg.PoolSize)
	}
	if cfg.ConnMaxLifetime != 30*time.Minute {
		t.Fatalf("ConnMaxLifetime = %v, want 30m", cfg.ConnMaxLifetime)
	}
}

func TestRedisConfigDefaultsKeepOverrides(t *testing.T) {
	cfg := RedisConfig{Addr: "localhost:6379", PoolSize: 5, ReadTimeout: time.Second}.withDefaults()

	if cfg.PoolSize != 5 {
		t.Fatalf("PoolSize = %d, want 5", cfg.PoolSize)
	}
	if cfg.ReadTimeout != time.Second {
		t.Fatalf("ReadTimeout = %v, want 1s", cfg.ReadTimeout)
	}
}

func TestOpenRedisRequiresAddr(t *testing.T) {
	if _, err := OpenRedis(context.Background(), RedisConfig{}); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}
