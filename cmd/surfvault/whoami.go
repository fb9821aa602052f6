package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pysugar/surfvault/internal/discovery"
	"github.com/spf13/cobra"
)

func newWhoamiCmd() *cobra.Command {
	var (
		format    string
		statePath string
	)

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the account the local editor client is signed in with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			path := statePath
			if path == "" {
				path = discovery.DefaultStatePath()
			}
			info, err := discovery.Inspect(path)
			if err != nil {
				return err
			}
			masked := info.Masked()
			if format == "json" {
				return outputJSON(cmd, masked)
			}

			t := newTable(cmd)
			t.AppendRows([]table.Row{
				{"State store", masked.Path},
				{"Signed in", masked.IsActive},
				{"Email", masked.Email},
				{"Name", masked.Name},
				{"Plan", masked.PlanName},
				{"Team", masked.TeamID},
				{"API key", masked.APIKey},
				{"Client version", masked.Version},
			})
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	cmd.Flags().StringVar(&statePath, "state-db", "", "State store path (default: auto-detect)")
	return cmd
}
