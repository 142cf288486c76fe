package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing-config.yaml"))
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBPath != "lcmapper.db" {
		t.Fatalf("unexpected db path default: %q", cfg.DBPath)
	}
	if cfg.BatchSize != 1000 {
		t.Fatalf("unexpected batch size default: %d", cfg.BatchSize)
	}
	if cfg.MixedDrillingShare != 60 {
		t.Fatalf("unexpected mixed split default: %v", cfg.MixedDrillingShare)
	}
	if cfg.FuzzyAllocationPct != 30 {
		t.Fatalf("unexpected fuzzy weight default: %v", cfg.FuzzyAllocationPct)
	}
	if cfg.Location == nil || cfg.Location.String() != "UTC" {
		t.Fatalf("unexpected location: %v", cfg.Location)
	}
	if cfg.SlackConfigured() || cfg.ReviewConfigured() {
		t.Fatalf("optional integrations should be off by default")
	}
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
db_path: "from-yaml.db"
batch_size: 250
mixed_drilling_share: 70
timezone: "UTC"
`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("CONFIG_PATH", cfgPath)
	t.Setenv("BATCH_SIZE", "500")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBPath != "from-yaml.db" {
		t.Fatalf("yaml value not applied: %q", cfg.DBPath)
	}
	if cfg.BatchSize != 500 {
		t.Fatalf("env override not applied: %d", cfg.BatchSize)
	}
	if cfg.MixedDrillingShare != 70 {
		t.Fatalf("yaml mixed split not applied: %v", cfg.MixedDrillingShare)
	}
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("TIMEZONE", "Not/AZone")

	if _, err := Load(); err == nil {
		t.Fatalf("expected invalid timezone to fail")
	}
}

func TestNormalizeClampsOutOfRangeConstants(t *testing.T) {
	cfg := Config{MixedDrillingShare: 140, FuzzyAllocationPct: -5}
	cfg.Normalize()
	if cfg.MixedDrillingShare != 60 || cfg.FuzzyAllocationPct != 30 {
		t.Fatalf("out-of-range constants not reset: %+v", cfg)
	}
}
