package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sevigo/git-review/internal/app"
)

var approveFilePath string

var approveCmd = &cobra.Command{
	Use:   "approve [range]",
	Short: "Mark every remaining hunk in the scope as reviewed",
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
		if _, err := syncScope(ctx, a, scope); err != nil {
			return err
		}

		var count int
		if approveFilePath != "" {
			count, err = a.Store.ApproveFile(ctx, scope, approveFilePath)
		} else {
			count, err = a.Store.ApproveAll(ctx, scope)
		}
		if err != nil {
			return err
		}

		if count == 0 {
			fmt.Println("Nothing to approve.")
			return nil
		}
		color.Green("✓ approved %d hunks in %s", count, scope)
		return nil
	},
}

func init() {
	approveCmd.Flags().StringVar(&approveFilePath, "file", "", "Limit approval to one file path")
	rootCmd.AddCommand(approveCmd)
}
