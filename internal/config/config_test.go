package config

import (
	"os"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"CVDATA_LOG_LEVEL", "CVDATA_WORKERS", "CVDATA_FETCH_TIMEOUT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers: got %d, want 4", cfg.Workers)
	}
	if cfg.FetchTimeout != 15*time.Second {
		t.Errorf("FetchTimeout: got %v, want 15s", cfg.FetchTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CVDATA_LOG_LEVEL", "debug")
	t.Setenv("CVDATA_CVAT_BASE_URL", "https://cvat.example.com")
	t.Setenv("CVDATA_WORKERS", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.CVATBaseURL != "https://cvat.example.com" {
		t.Errorf("CVATBaseURL: got %q", cfg.CVATBaseURL)
	}
	if cfg.Workers != 1 {
		t.Errorf("Workers should be clamped to 1, got %d", cfg.Workers)
	}
	if err := cfg.SetupLogging(); err != nil {
		t.Fatalf("SetupLogging failed: %v", err)
	}
	if log.GetLevel() != log.DebugLevel {
		t.Errorf("level: got %v, want debug", log.GetLevel())
	}
	log.SetLevel(log.InfoLevel)
}

func TestLoad_InvalidWorkers(t *testing.T) {
	t.Setenv("CVDATA_WORKERS", "many")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for non-numeric workers")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSetupLogging_InvalidLevel(t *testing.T) {
	cfg := &Config{LogLevel: "chatty"}
	if err := cfg.SetupLogging(); err == nil {
		t.Error("expected error for unknown level")
	}
}
