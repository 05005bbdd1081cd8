// Package config loads tool settings from the environment and from an
// optional per-repository .git-review.yml file.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sevigo/git-review/internal/logger"
)

// Config holds the tool-wide configuration values.
type Config struct {
	Log           logger.Config
	StateDir      string
	DBFile        string
	BaseBranch    string
	Theme         string
	WatchInterval time.Duration
}

// LoadConfig reads configuration from GIT_REVIEW_* environment
// variables with sensible defaults. Per-repository overrides come from
// .git-review.yml and win over the environment.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GIT_REVIEW")
	v.AutomaticEnv()

	v.SetDefault("LOG_LEVEL", "warn")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_OUTPUT", "stderr")
	v.SetDefault("STATE_DIR", ".git/review-state")
	v.SetDefault("DB_FILE", "review.db")
	v.SetDefault("BASE_BRANCH", "")
	v.SetDefault("THEME", "default")
	v.SetDefault("WATCH_INTERVAL", 5)

	interval := v.GetInt("WATCH_INTERVAL")
	if interval < 1 {
		interval = 5
	}

	return &Config{
		Log: logger.Config{
			Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
			Output: strings.ToLower(v.GetString("LOG_OUTPUT")),
		},
		StateDir:      v.GetString("STATE_DIR"),
		DBFile:        v.GetString("DB_FILE"),
		BaseBranch:    v.GetString("BASE_BRANCH"),
		Theme:         v.GetString("THEME"),
		WatchInterval: time.Duration(interval) * time.Second,
	}, nil
}
