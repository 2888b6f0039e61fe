package cache

import (
	"testing"

	"monitormate/internal/config"
)

func TestRedisOptions(t *testing.T) {
	t.Parallel()

	cfg := config.RedisConfig{
		Host:     "redis.internal",
		Port:     6380,
		Password: "hunter2",
		DB:       3,
	}

	opts := redisOptions(cfg)
	if opts.Addr != "redis.internal:6380" {
		t.Errorf("Addr = %q", opts.Addr)
	}
	if opts.Password != "hunter2" || opts.DB != 3 {
		t.Errorf("credentials not carried: %+v", opts)
	}
	if opts.TLSConfig != nil {
		t.Error("TLSConfig must be nil when TLS is disabled")
	}

	cfg.TLS = true
	opts = redisOptions(cfg)
	if opts.TLSConfig == nil {
		t.Fatal("TLSConfig must be set when TLS is enabled")
	}
	if opts.TLSConfig.ServerName != "redis.internal" {
		t.Errorf("ServerName = %q", opts.TLSConfig.ServerName)
	}
}
