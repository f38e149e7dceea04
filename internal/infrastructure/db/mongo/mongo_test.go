package mongo

import (
	"context"
	"testing"
	"time"
)

func TestConfigClientOptions(t *testing.T) {
	opts := Config{URI: "mongodb://audit:27017", MaxPoolSize: 20, Timeout: 3 * time.Second}.clientOptions()

	if opts.AppName == nil || *opts.AppName != appName {
		t.Fatalf("expected app name %q, got %v", appName, opts.AppName)
	}
	if opts.MaxPoolSize == nil || *opts.MaxPoolSize != 20 {
		t.Fatalf("expected max pool size 20, got %v", opts.MaxPoolSize)
	}
	if opts.ServerSelectionTimeout == nil || *opts.ServerSelectionTimeout != 3*time.Second {
		t.Fatalf("expected 3s server selection timeout, got %v", opts.ServerSelectionTimeout)
	}
	if opts.WriteConcern == nil || opts.WriteConcern.W != "majority" {
		t.Fatalf("expected majority write concern, got %+v", opts.WriteConcern)
	}
}

func TestConfigClientOptions_DefaultPool(t *testing.T) {
	opts := Config{URI: "mongodb://audit:27017"}.clientOptions()
	if opts.MaxPoolSize != nil {
		t.Fatalf("pool size must be left to the driver default, got %d", *opts.MaxPoolSize)
	}
	if *opts.ServerSelectionTimeout != defaultTimeout {
		t.Fatalf("expected default timeout, got %s", *opts.ServerSelectionTimeout)
	}
}

func TestConnect_RequiresDatabase(t *testing.T) {
	if _, _, err := Connect(context.Background(), Config{URI: "mongodb://audit:27017"}); err == nil {
		t.Fatalf("expected error without a database name")
	}
}
