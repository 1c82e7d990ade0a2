package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"fastrack/internal/platform/config"
)

func TestNewDerivesPaths(t *testing.T) {
	t.Parallel()
	cfg, err := config.New("/data")
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.StatePath != filepath.Join("/data", ".fastrack", "state.json") {
		t.Fatalf("unexpected state path %s", cfg.StatePath)
	}
	if cfg.DBPath != filepath.Join("/data", ".fastrack", "fastrack.db") {
		t.Fatalf("unexpected db path %s", cfg.DBPath)
	}
	if cfg.JournalDir != filepath.Join("/data", "fasts") {
		t.Fatalf("unexpected journal dir %s", cfg.JournalDir)
	}
	if cfg.TickInterval != time.Second || cfg.LogLevel != "warn" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if _, err := config.New(""); err == nil {
		t.Fatalf("empty data dir must fail")
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("FASTRACK_TICK_INTERVAL=250ms\nFASTRACK_LOG_LEVEL=DEBUG\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.TickInterval != 250*time.Millisecond {
		t.Fatalf("expected 250ms tick, got %s", cfg.TickInterval)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected debug level, got %s", cfg.LogLevel)
	}
}

func TestLoadEnvironmentOverridesDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("FASTRACK_TICK_INTERVAL=250ms\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("FASTRACK_TICK_INTERVAL", "2s")
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.TickInterval != 2*time.Second {
		t.Fatalf("expected env override, got %s", cfg.TickInterval)
	}
}

func TestLoadRejectsBadInterval(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FASTRACK_TICK_INTERVAL", "-1s")
	if _, err := config.Load(dir); err == nil {
		t.Fatalf("negative interval must fail")
	}
}
