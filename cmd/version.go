package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCommand prints the version.
func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "boxblur %s (revision %s)\n", Version, Revision)
		},
	}
}
