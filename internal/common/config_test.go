package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	if config.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", config.Server.Port)
	}
	if config.Jobs.MaxBatchSize != 100 {
		t.Errorf("Expected default max batch 100, got %d", config.Jobs.MaxBatchSize)
	}
	if config.Jobs.ItemDelay != "15s" {
		t.Errorf("Expected default item delay 15s, got '%s'", config.Jobs.ItemDelay)
	}
	if config.Enrichment.Provider != "claude" {
		t.Errorf("Expected default provider claude, got '%s'", config.Enrichment.Provider)
	}
	if config.IsProduction() {
		t.Error("Default config should not be production")
	}
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()

	base := `
environment = "production"

[server]
port = 9090

[jobs]
max_batch_size = 25
item_delay = "5s"
`
	override := `
[server]
port = 9191
`
	basePath := filepath.Join(dir, "merx.toml")
	overridePath := filepath.Join(dir, "merx.local.toml")
	if err := os.WriteFile(basePath, []byte(base), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(overridePath, []byte(override), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadFromFiles(basePath, overridePath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Later files win
	if config.Server.Port != 9191 {
		t.Errorf("Expected override port 9191, got %d", config.Server.Port)
	}
	if config.Jobs.MaxBatchSize != 25 {
		t.Errorf("Expected max batch 25 from base file, got %d", config.Jobs.MaxBatchSize)
	}
	if config.Jobs.ItemDelay != "5s" {
		t.Errorf("Expected item delay 5s, got '%s'", config.Jobs.ItemDelay)
	}
	// Untouched settings keep their defaults
	if config.Scheduler.StaleAfter != "10m" {
		t.Errorf("Expected default stale window, got '%s'", config.Scheduler.StaleAfter)
	}
	if !config.IsProduction() {
		t.Error("Expected production environment from file")
	}
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	if _, err := LoadFromFiles(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestLoadFromFiles_EnvOverrides(t *testing.T) {
	t.Setenv("MERX_SERVER_PORT", "7070")
	t.Setenv("MERX_JOBS_ITEM_DELAY", "45s")
	t.Setenv("MERX_JOBS_MAX_BATCH_SIZE", "10")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test-anthropic")
	t.Setenv("MERX_ENRICHMENT_PROVIDER", "gemini")

	config, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Server.Port != 7070 {
		t.Errorf("Expected env port 7070, got %d", config.Server.Port)
	}
	if config.Jobs.ItemDelay != "45s" {
		t.Errorf("Expected env item delay, got '%s'", config.Jobs.ItemDelay)
	}
	if config.Jobs.MaxBatchSize != 10 {
		t.Errorf("Expected env max batch 10, got %d", config.Jobs.MaxBatchSize)
	}
	if config.Enrichment.Claude.APIKey != "sk-test-anthropic" {
		t.Error("ANTHROPIC_API_KEY not applied")
	}
	if config.Enrichment.Provider != "gemini" {
		t.Errorf("Expected env provider gemini, got '%s'", config.Enrichment.Provider)
	}
}

func TestLoadFromFiles_InvalidEnvDurationIgnored(t *testing.T) {
	t.Setenv("MERX_JOBS_ITEM_DELAY", "not-a-duration")

	config, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Jobs.ItemDelay != "15s" {
		t.Errorf("Malformed env duration should keep the default, got '%s'", config.Jobs.ItemDelay)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()

	ApplyFlagOverrides(config, 3000, "0.0.0.0")
	if config.Server.Port != 3000 || config.Server.Host != "0.0.0.0" {
		t.Errorf("Flag overrides not applied: %d / %s", config.Server.Port, config.Server.Host)
	}

	// Zero values leave the config alone
	ApplyFlagOverrides(config, 0, "")
	if config.Server.Port != 3000 || config.Server.Host != "0.0.0.0" {
		t.Error("Zero-valued flags should not reset the config")
	}
}

func TestParseDurationOr(t *testing.T) {
	tests := []struct {
		value string
		def   time.Duration
		want  time.Duration
	}{
		{"15s", time.Minute, 15 * time.Second},
		{"500ms", time.Second, 500 * time.Millisecond},
		{"", time.Minute, time.Minute},
		{"garbage", 2 * time.Minute, 2 * time.Minute},
		{"0", time.Minute, 0},
	}

	for _, tt := range tests {
		if got := ParseDurationOr(tt.value, tt.def); got != tt.want {
			t.Errorf("ParseDurationOr(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
		}
	}
}

func TestNewItemID(t *testing.T) {
	a := NewItemID()
	b := NewItemID()

	if !strings.HasPrefix(a, "item_") {
		t.Errorf("Expected item_ prefix, got '%s'", a)
	}
	if a == b {
		t.Error("Item IDs should be unique")
	}
}
