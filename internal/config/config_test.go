package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, ".git/review-state", cfg.StateDir)
	assert.Equal(t, "review.db", cfg.DBFile)
	assert.Equal(t, "", cfg.BaseBranch)
	assert.Equal(t, "default", cfg.Theme)
	assert.Equal(t, 5*time.Second, cfg.WatchInterval)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("GIT_REVIEW_LOG_LEVEL", "DEBUG")
	t.Setenv("GIT_REVIEW_BASE_BRANCH", "develop")
	t.Setenv("GIT_REVIEW_WATCH_INTERVAL", "30")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "develop", cfg.BaseBranch)
	assert.Equal(t, 30*time.Second, cfg.WatchInterval)
}

func TestLoadConfig_BadIntervalFallsBack(t *testing.T) {
	t.Setenv("GIT_REVIEW_WATCH_INTERVAL", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.WatchInterval)
}

func TestLoadRepoConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    RepoConfig
		wantErr error
	}{
		{
			name:    "full file",
			content: "base_branch: develop\ntheme: matrix\n",
			want:    RepoConfig{BaseBranch: "develop", Theme: "matrix"},
		},
		{
			name:    "partial file",
			content: "base_branch: trunk\n",
			want:    RepoConfig{BaseBranch: "trunk"},
		},
		{
			name:    "unknown keys ignored",
			content: "base_branch: main\nreviewers:\n  - someone\n",
			want:    RepoConfig{BaseBranch: "main"},
		},
		{
			name:    "broken yaml",
			content: "base_branch: [unclosed\n",
			wantErr: ErrConfigParsing,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, ".git-review.yml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			got, err := LoadRepoConfig(dir)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, &tt.want, got)
		})
	}
}

func TestLoadRepoConfig_Missing(t *testing.T) {
	got, err := LoadRepoConfig(t.TempDir())
	require.ErrorIs(t, err, ErrConfigNotFound)
	assert.Equal(t, DefaultRepoConfig(), got)
}

func TestRepoConfig_Merge(t *testing.T) {
	cfg := &Config{BaseBranch: "main", Theme: "default"}

	(&RepoConfig{Theme: "matrix"}).Merge(cfg)
	assert.Equal(t, "main", cfg.BaseBranch)
	assert.Equal(t, "matrix", cfg.Theme)

	(&RepoConfig{BaseBranch: "develop"}).Merge(cfg)
	assert.Equal(t, "develop", cfg.BaseBranch)
	assert.Equal(t, "matrix", cfg.Theme)
}
