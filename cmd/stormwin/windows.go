package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dshills/stormwin/internal/output"
)

func newWindowsCmd(o *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "windows",
		Short: "List the windows of the running instance",
		Long:  "List every window of the running instance with its bounds, theme and tabs.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.ParseFormat(format)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), forwardTimeout)
			defer cancel()
			client, err := dial(ctx, o)
			if err != nil {
				return err
			}
			defer client.Close()

			infos, err := client.Windows(ctx)
			if err != nil {
				return err
			}
			return output.Print(cmd.OutOrStdout(), f, output.WindowsResult{Windows: infos})
		},
	}
	cmd.Flags().StringVar(&format, "format", string(output.FormatYAML), "Output format: yaml, json, text")
	return cmd
}
