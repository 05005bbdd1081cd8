package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParsing  = errors.New("config parsing failed")
)

// RepoConfig holds the per-repository overrides from .git-review.yml.
// Zero values mean "not set" and fall back to the tool-wide config.
type RepoConfig struct {
	BaseBranch string `yaml:"base_branch"`
	Theme      string `yaml:"theme"`
}

// DefaultRepoConfig returns an empty override set.
func DefaultRepoConfig() *RepoConfig {
	return &RepoConfig{}
}

// LoadRepoConfig loads and parses the .git-review.yml file from a
// repository path. A missing file returns defaults together with
// ErrConfigNotFound so callers can treat it as optional.
func LoadRepoConfig(repoPath string) (*RepoConfig, error) {
	configPath := filepath.Join(repoPath, ".git-review.yml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultRepoConfig(), ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read .git-review.yml: %w", err)
	}

	config := DefaultRepoConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParsing, err)
	}
	return config, nil
}

// Merge applies repo overrides on top of the tool-wide config.
func (rc *RepoConfig) Merge(cfg *Config) {
	if rc.BaseBranch != "" {
		cfg.BaseBranch = rc.BaseBranch
	}
	if rc.Theme != "" {
		cfg.Theme = rc.Theme
	}
}
