package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sevigo/git-review/internal/app"
	"github.com/sevigo/git-review/internal/tui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the branch overview screen",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()
		a, cleanup, err := app.New(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		base, err := a.BaseBranch(ctx, "")
		if err != nil {
			return err
		}
		return tui.RunDashboard(a.Store, base, a.Cfg.WatchInterval, tui.ThemeName(a.Cfg.Theme))
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
