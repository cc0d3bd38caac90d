package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tessitura.toml")
	body := "acoustid_api_key = \"abc123\"\n\n[logging]\nlevel = \"debug\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AcoustidAPIKey != "abc123" {
		t.Errorf("AcoustidAPIKey = %q, want %q", cfg.AcoustidAPIKey, "abc123")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.DatabasePath == "" {
		t.Error("DatabasePath default should still be populated when the file doesn't set it")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tessitura.toml")
	if err := os.WriteFile(path, []byte("acoustid_api_key = \"from-file\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TESS_ACOUSTID_API_KEY", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AcoustidAPIKey != "from-env" {
		t.Errorf("AcoustidAPIKey = %q, want %q (env must win over file)", cfg.AcoustidAPIKey, "from-env")
	}
}

func TestEnvOverridesNestedLoggingTable(t *testing.T) {
	t.Setenv("TESS_LOGGING_COLOR", "false")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Color {
		t.Error("Color should be overridden to false by TESS_LOGGING_COLOR")
	}
}
