package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sevigo/git-review/internal/app"
	"github.com/sevigo/git-review/internal/diff"
	"github.com/sevigo/git-review/internal/git"
)

var watchInterval int

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll branches and print their review progress",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, cleanup, err := app.New(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		base, err := a.BaseBranch(ctx, "")
		if err != nil {
			return err
		}

		interval := a.Cfg.WatchInterval
		if watchInterval > 0 {
			interval = time.Duration(watchInterval) * time.Second
		}

		if err := printBranchProgress(ctx, a, base); err != nil {
			return err
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				fmt.Println("\nwatch stopped")
				return nil
			case <-ticker.C:
				if err := printBranchProgress(ctx, a, base); err != nil {
					return err
				}
			}
		}
	},
}

func printBranchProgress(ctx context.Context, a *app.App, base string) error {
	branches, err := git.ListBranches(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\n[%s] branches against %s\n", time.Now().Format("15:04:05"), base)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "BRANCH\tTIP\tHUNKS\tREVIEWED\tSTALE\tGATE")
	for _, b := range branches {
		if b.Name == base {
			continue
		}
		scope := base + "..." + b.Name
		raw, err := git.GetDiff(ctx, scope)
		if err != nil {
			a.Logger.Warn("skipping branch", "branch", b.Name, "error", err)
			continue
		}
		if err := a.Store.SyncWithDiff(ctx, scope, diff.Parse(raw)); err != nil {
			return err
		}
		progress, err := a.Store.Progress(ctx, scope)
		if err != nil {
			return err
		}
		gateCol := color.YellowString("open")
		if progress.Complete() {
			gateCol = color.GreenString("pass")
		} else if progress.Stale > 0 {
			gateCol = color.RedString("stale")
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			b.Name, b.LastCommitSHA, progress.TotalHunks, progress.Reviewed, progress.Stale, gateCol)
	}
	return w.Flush()
}

func init() {
	watchCmd.Flags().IntVar(&watchInterval, "interval", 0, "Polling interval in seconds (default from config)")
	rootCmd.AddCommand(watchCmd)
}
