// Package config loads engine configuration from config.yaml with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DBPath    string `yaml:"db_path"`
	BackupDir string `yaml:"backup_dir"`
	LogPath   string `yaml:"log_path"`
	ReportDir string `yaml:"report_output_dir"`

	BatchSize         int `yaml:"batch_size"`
	BatchDelayMs      int `yaml:"batch_delay_ms"`
	BackupPageSize    int `yaml:"backup_page_size"`
	ProgressLogEveryN int `yaml:"progress_log_every_n_batches"`

	// Business constants flagged for domain-owner validation; the defaults
	// mirror the historical hard-coded values.
	MixedDrillingShare float64 `yaml:"mixed_drilling_share"`
	FuzzyAllocationPct float64 `yaml:"fuzzy_allocation_pct"`

	BackfillSchedule string `yaml:"backfill_schedule"` // 5-field cron, empty disables serve mode

	SlackBotToken  string `yaml:"slack_bot_token"`
	SlackChannelID string `yaml:"slack_channel_id"`

	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	ReviewModel     string `yaml:"review_model"`
	ReviewBatchSize int    `yaml:"review_batch_size"`

	Timezone string `yaml:"timezone"`

	Location *time.Location `yaml:"-"`
}

// Load reads config.yaml (or $CONFIG_PATH), applies env overrides and
// defaults. A missing config file is fine; env vars alone can configure a run.
func Load() (Config, error) {
	var cfg Config

	path := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		path = envPath
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.BackupDir, "BACKUP_DIR")
	envOverride(&cfg.LogPath, "LOG_PATH")
	envOverride(&cfg.ReportDir, "REPORT_OUTPUT_DIR")
	envOverrideInt(&cfg.BatchSize, "BATCH_SIZE")
	envOverrideInt(&cfg.BatchDelayMs, "BATCH_DELAY_MS")
	envOverrideFloat(&cfg.MixedDrillingShare, "MIXED_DRILLING_SHARE")
	envOverrideFloat(&cfg.FuzzyAllocationPct, "FUZZY_ALLOCATION_PCT")
	envOverride(&cfg.BackfillSchedule, "BACKFILL_SCHEDULE")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.ReviewModel, "REVIEW_MODEL")
	envOverride(&cfg.Timezone, "TIMEZONE")

	cfg.Normalize()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return cfg, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc
	return cfg, nil
}

// Normalize fills in defaults for anything left unset.
func (cfg *Config) Normalize() {
	if cfg.DBPath == "" {
		cfg.DBPath = "lcmapper.db"
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = "backups"
	}
	if cfg.LogPath == "" {
		cfg.LogPath = "lcmapper.log"
	}
	if cfg.ReportDir == "" {
		cfg.ReportDir = "reports"
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1000
	}
	if cfg.BatchDelayMs <= 0 {
		cfg.BatchDelayMs = 100
	}
	if cfg.BackupPageSize < 1 {
		cfg.BackupPageSize = 500
	}
	if cfg.ProgressLogEveryN < 1 {
		cfg.ProgressLogEveryN = 1
	}
	if cfg.MixedDrillingShare <= 0 || cfg.MixedDrillingShare > 100 {
		cfg.MixedDrillingShare = 60
	}
	if cfg.FuzzyAllocationPct <= 0 || cfg.FuzzyAllocationPct > 100 {
		cfg.FuzzyAllocationPct = 30
	}
	if cfg.ReviewModel == "" {
		cfg.ReviewModel = "claude-sonnet-4-5-20250929"
	}
	if cfg.ReviewBatchSize < 1 {
		cfg.ReviewBatchSize = 25
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "America/Chicago"
	}
}

// SlackConfigured reports whether run summaries can be posted.
func (cfg Config) SlackConfigured() bool {
	return cfg.SlackBotToken != "" && cfg.SlackChannelID != ""
}

// ReviewConfigured reports whether the LLM review pass is available.
func (cfg Config) ReviewConfigured() bool {
	return cfg.AnthropicAPIKey != ""
}

func envOverride(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func envOverrideInt(target *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		}
	}
}

func envOverrideFloat(target *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*target = f
		}
	}
}
