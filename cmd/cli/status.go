package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sevigo/git-review/internal/app"
	"github.com/sevigo/git-review/internal/store"
)

var outputJSON bool

var statusCmd = &cobra.Command{
	Use:   "status [range]",
	Short: "Show review progress for a diff scope",
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
		return printProgress(ctx, a, scope, outputJSON)
	},
}

func printProgress(ctx context.Context, a *app.App, scope string, asJSON bool) error {
	progress, err := a.Store.Progress(ctx, scope)
	if err != nil {
		return err
	}

	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(struct {
			Scope string `json:"scope"`
			store.Progress
			GatePassed bool `json:"gate_passed"`
		}{scope, progress, progress.Complete()})
	}

	if progress.TotalHunks == 0 {
		fmt.Printf("No hunks tracked for %s.\n", scope)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "SCOPE\t%s\n", scope)
	fmt.Fprintf(w, "HUNKS\t%d\n", progress.TotalHunks)
	fmt.Fprintf(w, "REVIEWED\t%s\n", color.GreenString("%d", progress.Reviewed))
	fmt.Fprintf(w, "UNREVIEWED\t%s\n", color.YellowString("%d", progress.Unreviewed))
	fmt.Fprintf(w, "STALE\t%s\n", color.RedString("%d", progress.Stale))
	fmt.Fprintf(w, "FILES\t%d (%d remaining)\n", progress.TotalFiles, progress.FilesRemaining)
	if err := w.Flush(); err != nil {
		return err
	}

	if progress.Complete() {
		color.Green("✓ review complete")
	} else {
		color.Yellow("review in progress")
	}
	return nil
}

func init() {
	statusCmd.Flags().BoolVar(&outputJSON, "json", false, "Output progress as JSON")
	rootCmd.AddCommand(statusCmd)
}
