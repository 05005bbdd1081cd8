package main

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sevigo/git-review/internal/app"
	"github.com/sevigo/git-review/internal/gate"
	"github.com/sevigo/git-review/internal/git"
)

var commitBase string

var commitCmd = &cobra.Command{
	Use:   "commit [-- git commit args...]",
	Short: "Run git commit after the review gate passes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, cleanup, err := app.New(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		scope, err := a.BaseBranch(ctx, commitBase)
		if err != nil {
			return err
		}
		files, err := syncScope(ctx, a, scope)
		if err != nil {
			return err
		}

		if len(files) > 0 {
			passed, err := gate.Check(ctx, a.Store, scope)
			if err != nil {
				return err
			}
			if !passed {
				progress, err := a.Store.Progress(ctx, scope)
				if err != nil {
					return err
				}
				color.Red("commit blocked: %d unreviewed, %d stale hunks against %s",
					progress.Unreviewed, progress.Stale, scope)
				color.Yellow("run 'git-review %s' to finish the review", scope)
				cleanup()
				os.Exit(1)
			}
		}
		return git.Commit(ctx, args)
	},
}

func init() {
	commitCmd.Flags().StringVar(&commitBase, "base", "", "Base ref to gate against (defaults to the configured base branch)")
	rootCmd.AddCommand(commitCmd)
}
