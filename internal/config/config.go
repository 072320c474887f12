// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config is the application configuration: where data lives and runtime
// tunables. User reading preferences are not configuration; they live in
// the settings store.
type Config struct {
	DataDir    string `mapstructure:"data_dir"`
	DebounceMs int    `mapstructure:"debounce_ms"`
	WatchDir   string `mapstructure:"watch_dir"`
}

// Load reads configuration from defaults, an optional YAML config file
// in the data directory, and LAPBOOK_* environment overrides.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	defaultDataDir := filepath.Join(homeDir, ".lapbook")

	viper.SetDefault("data_dir", defaultDataDir)
	viper.SetDefault("debounce_ms", 2000)
	viper.SetDefault("watch_dir", "")

	viper.SetEnvPrefix("LAPBOOK")
	viper.AutomaticEnv()
	viper.BindEnv("data_dir", "LAPBOOK_DATA_DIR")
	viper.BindEnv("debounce_ms", "LAPBOOK_DEBOUNCE_MS")
	viper.BindEnv("watch_dir", "LAPBOOK_WATCH_DIR")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultDataDir)

	// A missing config file is fine; defaults and env apply.
	_ = viper.ReadInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Debounce returns the progress-write quiet window.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}
