package main

import (
	"fmt"
	"path/filepath"

	"github.com/pysugar/surfvault/internal/store/models"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Write the whole store to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			if err := a.store.ExportData(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d accounts to %s\n", len(a.store.GetAllAccounts()), args[0])
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	var merge bool

	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Load a store file, replacing or merging",
		Long:  "Load an exported store file. Without --merge the current store is replaced. With --merge accounts are matched by id, then by email.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			res, err := a.store.ImportData(args[0], merge)
			if err != nil {
				return err
			}
			_ = a.store.AddLog(models.NewOperationLog(models.OpImport, models.OpSuccess,
				"imported "+filepath.Base(args[0])).WithDetails(res))
			if res.Replaced {
				fmt.Fprintf(cmd.OutOrStdout(), "Replaced store with %d accounts\n", res.Added)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d, updated %d, skipped %d\n", res.Added, res.Updated, res.Skipped)
			return nil
		},
	}

	cmd.Flags().BoolVar(&merge, "merge", false, "Merge into the current store instead of replacing it")
	return cmd
}
