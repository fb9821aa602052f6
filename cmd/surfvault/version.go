package main

import (
	"fmt"

	"github.com/pysugar/surfvault/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "surfvault %s (commit %s, built %s)\n", version.Version, version.Commit, version.BuildTime)
		},
	}
}
