package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL != "https://api.daylight.community/api/" {
		t.Fatalf("unexpected base URL %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.API.Timeout)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Fatalf("unexpected log config %+v", cfg.Log)
	}
	if cfg.TokenFile == "" {
		t.Fatal("expected a default token file path")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DAYLIGHT_API_BASE_URL", "http://localhost:8000/api/")
	t.Setenv("DAYLIGHT_API_TIMEOUT", "3s")
	t.Setenv("DAYLIGHT_LOG_LEVEL", "debug")
	t.Setenv("DAYLIGHT_TOKEN_FILE", "/tmp/daylight-tokens.json")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:8000/api/" {
		t.Fatalf("unexpected base URL %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.API.Timeout)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level %q", cfg.Log.Level)
	}
	if cfg.TokenFile != "/tmp/daylight-tokens.json" {
		t.Fatalf("unexpected token file %q", cfg.TokenFile)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daylight.yaml")
	contents := []byte("env: prod\napi:\n  base_url: https://example.org/api/\n  requests_per_second: 2\n")
	if err := os.WriteFile(path, contents, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != "prod" {
		t.Fatalf("unexpected env %q", cfg.Env)
	}
	if cfg.API.BaseURL != "https://example.org/api/" {
		t.Fatalf("unexpected base URL %q", cfg.API.BaseURL)
	}
	if cfg.API.RequestsPerSecond != 2 {
		t.Fatalf("unexpected rate %v", cfg.API.RequestsPerSecond)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}
