package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevigo/git-review/internal/app"
	"github.com/sevigo/git-review/internal/diff"
	"github.com/sevigo/git-review/internal/git"
)

var rootCmd = &cobra.Command{
	Use:   "git-review [range]",
	Short: "git-review tracks per-hunk review state for git diffs.",
	Long: `Track which hunks of a diff you have actually read. State is keyed
by hunk content, so reviewed hunks stay reviewed across rebases and
amend cycles while edited hunks come back for another look.

Run without a subcommand to open the interactive review screen.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReview(cmd, args)
	},
}

// resolveScope turns the optional CLI argument into the scope the
// store is keyed by: the argument itself, or the configured/detected
// base branch.
func resolveScope(ctx context.Context, a *app.App, args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		if err := git.ValidateRef(args[0]); err != nil {
			return "", err
		}
		return args[0], nil
	}
	return a.BaseBranch(ctx, "")
}

// syncScope fetches the diff for a scope, parses it, and reconciles
// the store before any status is read.
func syncScope(ctx context.Context, a *app.App, scope string) ([]diff.File, error) {
	raw, err := git.GetDiff(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to get diff for %s: %w", scope, err)
	}
	files := diff.Parse(raw)
	if err := a.Store.SyncWithDiff(ctx, scope, files); err != nil {
		return nil, err
	}
	a.Logger.Debug("scope synced", "scope", scope, "files", len(files), "hunks", diff.HunkCount(files))
	return files, nil
}
