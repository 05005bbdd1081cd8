package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevigo/git-review/internal/app"
	"github.com/sevigo/git-review/internal/tui"
)

var reviewStatusOnly bool

var reviewCmd = &cobra.Command{
	Use:   "review [range]",
	Short: "Open the interactive hunk-by-hunk review screen",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReview(cmd, args)
	},
}

func runReview(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	a, cleanup, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	scope, err := resolveScope(ctx, a, args)
	if err != nil {
		return err
	}
	files, err := syncScope(ctx, a, scope)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Printf("No changes to review against %s.\n", scope)
		return nil
	}

	if reviewStatusOnly {
		return printProgress(ctx, a, scope, false)
	}
	return tui.RunReview(a.Store, scope, files, tui.ThemeName(a.Cfg.Theme))
}

func init() {
	reviewCmd.Flags().BoolVar(&reviewStatusOnly, "status", false, "Print a summary instead of opening the review screen")
	rootCmd.Flags().BoolVar(&reviewStatusOnly, "status", false, "Print a summary instead of opening the review screen")
	rootCmd.AddCommand(reviewCmd)
}
