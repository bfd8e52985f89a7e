package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DELTA_MEMORY_FILE", "DELTA_NEWS_COUNTRY", "DELTA_SMTP_PORT", "DELTA_LOOKUP_TIMEOUT_SECONDS"} {
		t.Setenv(key, "")
	}
	cfg := Load()

	if cfg.Port != "3001" {
		t.Errorf("Port = %q, want 3001", cfg.Port)
	}
	if cfg.MemoryFile != "delta_memory.json" {
		t.Errorf("MemoryFile = %q, want delta_memory.json", cfg.MemoryFile)
	}
	if cfg.NewsCountry != "in" {
		t.Errorf("NewsCountry = %q, want in", cfg.NewsCountry)
	}
	if cfg.SMTPPort != 587 {
		t.Errorf("SMTPPort = %d, want 587", cfg.SMTPPort)
	}
	if cfg.LookupTimeout != 6*time.Second {
		t.Errorf("LookupTimeout = %s, want 6s", cfg.LookupTimeout)
	}
}

func TestLoad_HonorsEnvironment(t *testing.T) {
	t.Setenv("DELTA_MEMORY_FILE", "/tmp/custom.json")
	t.Setenv("DELTA_SMTP_PORT", "2525")

	cfg := Load()
	if cfg.MemoryFile != "/tmp/custom.json" {
		t.Errorf("MemoryFile = %q, want override", cfg.MemoryFile)
	}
	if cfg.SMTPPort != 2525 {
		t.Errorf("SMTPPort = %d, want 2525", cfg.SMTPPort)
	}
}

func TestLoadTargets_EmptyPathReturnsDefaults(t *testing.T) {
	targets, err := LoadTargets("")
	if err != nil {
		t.Fatalf("LoadTargets failed: %v", err)
	}
	if targets.URLs["youtube"] == "" {
		t.Error("Default youtube target missing")
	}
}

func TestLoadTargets_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.yaml")
	content := []byte("urls:\n  mail: https://mail.example.com\n  youtube: https://music.youtube.com\ncommands:\n  editor: gedit\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("Failed to write targets file: %v", err)
	}

	targets, err := LoadTargets(path)
	if err != nil {
		t.Fatalf("LoadTargets failed: %v", err)
	}
	if targets.URLs["mail"] != "https://mail.example.com" {
		t.Errorf("New alias not loaded: %q", targets.URLs["mail"])
	}
	if targets.URLs["youtube"] != "https://music.youtube.com" {
		t.Errorf("Override not applied: %q", targets.URLs["youtube"])
	}
	if targets.Commands["editor"] != "gedit" {
		t.Errorf("Command alias not loaded: %q", targets.Commands["editor"])
	}
	if targets.URLs["google"] == "" {
		t.Error("Default google target lost in merge")
	}
}

func TestLoadTargets_BadYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.yaml")
	if err := os.WriteFile(path, []byte("urls: [not a map"), 0o644); err != nil {
		t.Fatalf("Failed to write targets file: %v", err)
	}
	if _, err := LoadTargets(path); err == nil {
		t.Error("Expected an error for malformed YAML")
	}
}
