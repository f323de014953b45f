package config

import (
	"os"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	os.Unsetenv("OOROO_CACHE_DIR")
	os.Unsetenv("OOROO_OUTPUT_FORMAT")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.CacheDir != "./.ooroo-cache" {
		t.Errorf("expected default cache_dir, got %s", cfg.CacheDir)
	}
	if cfg.OutputFormat != "text" {
		t.Errorf("expected default output_format text, got %s", cfg.OutputFormat)
	}
}

func TestLoadConfigEnvironmentOverride(t *testing.T) {
	os.Setenv("OOROO_OUTPUT_FORMAT", "json")
	defer os.Unsetenv("OOROO_OUTPUT_FORMAT")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.OutputFormat != "json" {
		t.Errorf("expected output_format json, got %s", cfg.OutputFormat)
	}
}

func TestLoadConfigInvalidOutputFormat(t *testing.T) {
	os.Setenv("OOROO_OUTPUT_FORMAT", "xml")
	defer os.Unsetenv("OOROO_OUTPUT_FORMAT")

	_, err := LoadConfig("")
	if err == nil {
		t.Error("expected error for unsupported output_format")
	}
}
