package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/stormwin/internal/desktop"
)

func newThemeCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "theme NAME",
		Short:     "Switch every window of the running instance to a theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: desktop.ThemeNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), forwardTimeout)
			defer cancel()
			client, err := dial(ctx, o)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.SetTheme(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "theme set to %s\n", args[0])
			return nil
		},
	}
}
