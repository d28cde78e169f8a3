package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("COUNTER_BACKEND", "")
	t.Setenv("LINKCHECK_INTERVAL", "")
	Load()
	if Cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", Cfg.Port)
	}
	if Cfg.CounterBackend != "file" {
		t.Errorf("CounterBackend = %q, want file", Cfg.CounterBackend)
	}
	if Cfg.LinkCheckInterval != 24*time.Hour {
		t.Errorf("LinkCheckInterval = %v, want 24h", Cfg.LinkCheckInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GZIP_ENABLED", "false")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SOURCECHECK_INTERVAL", "90m")
	Load()
	if Cfg.Port != "9090" || Cfg.GzipEnabled || Cfg.RedisDB != 3 || Cfg.SourceCheckInterval != 90*time.Minute {
		t.Fatalf("overrides not applied: %+v", Cfg)
	}
}

func TestEnvHelpersFallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "many")
	t.Setenv("X_BOOL", "perhaps")
	t.Setenv("X_DUR", "soon")
	if envInt("X_INT", 7) != 7 {
		t.Error("envInt did not fall back")
	}
	if !envBool("X_BOOL", true) {
		t.Error("envBool did not fall back")
	}
	if envDuration("X_DUR", time.Second) != time.Second {
		t.Error("envDuration did not fall back")
	}
}
