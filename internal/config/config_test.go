package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	_ = os.Unsetenv("MEMDEV_HTTP_LISTEN")
	_ = os.Unsetenv("MEMDEV_DATABASE")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.HTTPListen != ":9560" || cfg.DatabasePath != "memdev.db" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.EnableSwagger {
		t.Fatalf("swagger should default to enabled")
	}
	if cfg.PurgeInterval != 24*time.Hour {
		t.Fatalf("unexpected default purge interval: %s", cfg.PurgeInterval)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	_ = os.Setenv("MEMDEV_DATABASE", "/tmp/other.db")
	defer func() { _ = os.Unsetenv("MEMDEV_DATABASE") }()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DatabasePath != "/tmp/other.db" {
		t.Fatalf("database env override failed, got %s", cfg.DatabasePath)
	}
}
