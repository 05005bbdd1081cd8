// Package app wires the configuration, logger, repository discovery
// and review store into one handle the commands share.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sevigo/git-review/internal/config"
	"github.com/sevigo/git-review/internal/git"
	"github.com/sevigo/git-review/internal/logger"
	"github.com/sevigo/git-review/internal/store"
)

// App holds the components every command needs. One store handle per
// process, passed explicitly; nothing here is a global.
type App struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Store    store.Store
	RepoRoot string
}

// New locates the enclosing repository, loads configuration, and opens
// the review database under .git/review-state. The returned cleanup
// closes the database.
func New(ctx context.Context) (*App, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.NewLogger(cfg.Log, nil)

	root, err := git.FindRepoRoot(ctx)
	if err != nil {
		return nil, nil, err
	}

	repoCfg, err := config.LoadRepoConfig(root)
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, nil, err
	}
	repoCfg.Merge(cfg)

	stateDir := filepath.Join(root, cfg.StateDir)
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, cleanup, err := store.Open(filepath.Join(stateDir, cfg.DBFile))
	if err != nil {
		return nil, nil, err
	}

	log.Debug("application initialized", "repo_root", root, "state_dir", stateDir)
	return &App{
		Cfg:      cfg,
		Logger:   log,
		Store:    store.NewStore(db),
		RepoRoot: root,
	}, cleanup, nil
}

// BaseBranch resolves the diff base: explicit argument, then config,
// then the repository's detected default branch.
func (a *App) BaseBranch(ctx context.Context, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if a.Cfg.BaseBranch != "" {
		return a.Cfg.BaseBranch, nil
	}
	branch, err := git.DetectDefaultBranch(ctx)
	if err != nil {
		return "", fmt.Errorf("no base branch configured and none detected: %w", err)
	}
	return branch, nil
}
