package redis

import (
	"testing"
	"time"
)

func TestConfigOptions_HostPort(t *testing.T) {
	opts, err := Config{Addr: "cache:6379", Password: "pw", DB: 2, PoolSize: 7}.options()
	if err != nil {
		t.Fatalf("options returned error: %v", err)
	}
	if opts.Addr != "cache:6379" || opts.Password != "pw" || opts.DB != 2 {
		t.Fatalf("unexpected connection options: %+v", opts)
	}
	if opts.PoolSize != 7 || opts.ClientName != clientName {
		t.Fatalf("unexpected pool/client options: pool=%d name=%q", opts.PoolSize, opts.ClientName)
	}
	if opts.DialTimeout != defaultTimeout || opts.ReadTimeout != defaultTimeout {
		t.Fatalf("expected default timeouts, got dial=%s read=%s", opts.DialTimeout, opts.ReadTimeout)
	}
}

func TestConfigOptions_URL(t *testing.T) {
	opts, err := Config{Addr: "redis://:secret@cache:6380/3", Password: "ignored", Timeout: time.Second}.options()
	if err != nil {
		t.Fatalf("options returned error: %v", err)
	}
	if opts.Addr != "cache:6380" || opts.Password != "secret" || opts.DB != 3 {
		t.Fatalf("url settings not applied: addr=%s db=%d", opts.Addr, opts.DB)
	}
	if opts.WriteTimeout != time.Second {
		t.Fatalf("expected 1s write timeout, got %s", opts.WriteTimeout)
	}
}

func TestConfigOptions_BadURL(t *testing.T) {
	if _, err := (Config{Addr: "http://cache:6379"}).options(); err == nil {
		t.Fatalf("expected error for non-redis scheme")
	}
}
