package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"), filepath.Join(t.TempDir(), "nope.env"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.ServerURL != "http://localhost:7770" || cfg.PageLimit != 20 {
		t.Errorf("defaults: got %+v", cfg)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("serverUrl: http://example.com\npageLimit: 5\n"), 0o644)

	cfg, err := LoadFrom(path, filepath.Join(dir, "nope.env"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.ServerURL != "http://example.com" {
		t.Errorf("serverUrl: got %q", cfg.ServerURL)
	}
	if cfg.PageLimit != 5 {
		t.Errorf("pageLimit: got %d", cfg.PageLimit)
	}
	// Unset fields fall back to defaults.
	if cfg.APIPrefix != "/api" || cfg.LogLevel != "info" {
		t.Errorf("backfill: got %+v", cfg)
	}
}

func TestEnvWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("serverUrl: http://from-file\n"), 0o644)

	t.Setenv("WAYLIS_SERVER_URL", "http://from-env")
	t.Setenv("WAYLIS_TOKEN", "tok-123")

	cfg, err := LoadFrom(path, filepath.Join(dir, "nope.env"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.ServerURL != "http://from-env" {
		t.Errorf("env should win: got %q", cfg.ServerURL)
	}
	if cfg.IdentityToken != "tok-123" {
		t.Errorf("token: got %q", cfg.IdentityToken)
	}
}

func TestSaveExcludesToken(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.IdentityToken = "secret"
	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	data, _ := os.ReadFile(path)
	if len(data) == 0 {
		t.Fatal("empty config written")
	}
	if strings.Contains(string(data), "secret") {
		t.Error("identity token must never be persisted")
	}
}
