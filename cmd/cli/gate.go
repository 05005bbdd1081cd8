package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sevigo/git-review/internal/app"
	"github.com/sevigo/git-review/internal/gate"
)

var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Evaluate or manage the review gate",
}

var gateCheckCmd = &cobra.Command{
	Use:   "check [range]",
	Short: "Exit 0 when every hunk in the scope is reviewed",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
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
			fmt.Printf("No changes against %s, gate passes.\n", scope)
			return nil
		}

		passed, err := gate.Check(ctx, a.Store, scope)
		if err != nil {
			return err
		}
		if !passed {
			progress, err := a.Store.Progress(ctx, scope)
			if err != nil {
				return err
			}
			color.Red("review gate failed for %s: %d unreviewed, %d stale",
				scope, progress.Unreviewed, progress.Stale)
			cleanup()
			os.Exit(1)
		}
		color.Green("✓ review gate passed for %s", scope)
		return nil
	},
}

var gateEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Install the pre-commit hook that runs the gate",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()
		a, cleanup, err := app.New(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := gate.Enable(a.RepoRoot); err != nil {
			return err
		}
		fmt.Println("Pre-commit review gate installed.")
		return nil
	},
}

var gateDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Remove the pre-commit hook",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()
		a, cleanup, err := app.New(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := gate.Disable(a.RepoRoot); err != nil {
			return err
		}
		fmt.Println("Pre-commit review gate removed.")
		return nil
	},
}

func init() {
	gateCmd.AddCommand(gateCheckCmd, gateEnableCmd, gateDisableCmd)
	rootCmd.AddCommand(gateCmd)
}
