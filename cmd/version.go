package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is overridden at build time via -ldflags.
var Version = "dev"

func setupVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show application version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "blogsmith", Version)
			return nil
		},
	}
}
