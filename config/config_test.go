package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)
}

func TestLoadConfigDefaults(t *testing.T) {
	writeConfig(t, `
http:
  addr: ":8080"
store:
  backend: memory
`)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Logging.Service != "conference-service" || cfg.Logging.Backend != "std" {
		t.Fatalf("logging defaults not applied: %+v", cfg.Logging)
	}
	if cfg.Store.TTLDuration() != time.Hour {
		t.Fatalf("ttl default: %v", cfg.Store.TTLDuration())
	}
	if cfg.Store.OpTimeoutDuration() != 3*time.Second {
		t.Fatalf("opTimeout default: %v", cfg.Store.OpTimeoutDuration())
	}
	if cfg.Rooms.SweepIntervalDuration() != 30*time.Minute {
		t.Fatalf("sweepInterval default: %v", cfg.Rooms.SweepIntervalDuration())
	}
	if cfg.Rooms.StaleThresholdDuration() != time.Hour {
		t.Fatalf("staleThreshold default: %v", cfg.Rooms.StaleThresholdDuration())
	}
}

func TestLoadConfigDurations(t *testing.T) {
	writeConfig(t, `
http:
  addr: ":8080"
store:
  backend: redis
  redisUrl: redis://localhost:6379/0
  ttl: 30m
  opTimeout: 500ms
rooms:
  sweepInterval: 5m
  staleThreshold: 45m
`)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Store.TTLDuration() != 30*time.Minute {
		t.Fatalf("ttl: %v", cfg.Store.TTLDuration())
	}
	if cfg.Store.OpTimeoutDuration() != 500*time.Millisecond {
		t.Fatalf("opTimeout: %v", cfg.Store.OpTimeoutDuration())
	}
	if cfg.Rooms.SweepIntervalDuration() != 5*time.Minute {
		t.Fatalf("sweepInterval: %v", cfg.Rooms.SweepIntervalDuration())
	}
	if cfg.Rooms.StaleThresholdDuration() != 45*time.Minute {
		t.Fatalf("staleThreshold: %v", cfg.Rooms.StaleThresholdDuration())
	}
}

func TestLoadConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing addr", "store:\n  backend: memory\n"},
		{"bad backend", "http:\n  addr: \":8080\"\nstore:\n  backend: etcd\n"},
		{"redis without url", "http:\n  addr: \":8080\"\nstore:\n  backend: redis\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			writeConfig(t, tc.body)
			if _, err := LoadConfig(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
