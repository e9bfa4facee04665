package config

import (
	"os"
	"path/filepath"
	"testing"
)

// writeConfig writes a temporary config file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
api:
  host: "0.0.0.0"
  port: 8080
sync:
  call_timeout: 15
  pull_concurrency: 4
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if cfg.Sync.CallTimeout != 15 {
		t.Errorf("Sync.CallTimeout = %d, want 15", cfg.Sync.CallTimeout)
	}
	if cfg.Sync.PullConcurrency != 4 {
		t.Errorf("Sync.PullConcurrency = %d, want 4", cfg.Sync.PullConcurrency)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_Defaults(t *testing.T) {
	content := `
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("API.Port default = %d, want 8080", cfg.API.Port)
	}
	if cfg.Sync.CallTimeout != 30 {
		t.Errorf("Sync.CallTimeout default = %d, want 30", cfg.Sync.CallTimeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level default = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	content := `
database:
  path: "/tmp/test.db"
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Error("Load() expected error for missing JWT secret, got nil")
	}
}

func TestLoad_ShortJWTSecret(t *testing.T) {
	content := `
security:
  jwt:
    secret: "too-short"
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Error("Load() expected error for short JWT secret, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	content := `
database:
  path: "/tmp/test.db"
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	t.Setenv("FLEETWAN_DATABASE_PATH", "/tmp/override.db")
	t.Setenv("FLEETWAN_API_PORT", "9090")

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("Database.Path = %q, want env override %q", cfg.Database.Path, "/tmp/override.db")
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want env override 9090", cfg.API.Port)
	}
}

func TestValidate_InvalidSync(t *testing.T) {
	content := `
sync:
  call_timeout: 0
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Error("Load() expected error for zero call_timeout, got nil")
	}
}
