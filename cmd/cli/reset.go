package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevigo/git-review/internal/app"
)

var resetAllScopes bool

var resetCmd = &cobra.Command{
	Use:   "reset [range]",
	Short: "Delete review state for a scope",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx := context.Background()
		a, cleanup, err := app.New(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if resetAllScopes {
			scopes, err := a.Store.ListScopes(ctx)
			if err != nil {
				return err
			}
			for _, scope := range scopes {
				if err := a.Store.Reset(ctx, scope); err != nil {
					return err
				}
			}
			fmt.Printf("Cleared review state for %d scopes.\n", len(scopes))
			return nil
		}

		scope, err := resolveScope(ctx, a, args)
		if err != nil {
			return err
		}
		if err := a.Store.Reset(ctx, scope); err != nil {
			return err
		}
		fmt.Printf("Cleared review state for %s.\n", scope)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetAllScopes, "all", false, "Clear every tracked scope")
	rootCmd.AddCommand(resetCmd)
}
