package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pysugar/surfvault/internal/store/models"
	"github.com/spf13/cobra"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create, list and restore store backups",
	}
	cmd.AddCommand(newBackupCreateCmd())
	cmd.AddCommand(newBackupListCmd())
	cmd.AddCommand(newBackupRestoreCmd())
	return cmd
}

func newBackupCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Write a timestamped backup of the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			path, err := a.store.CreateTimestampedBackup()
			if err != nil {
				return err
			}
			_ = a.store.AddLog(models.NewOperationLog(models.OpBackup, models.OpSuccess, "backup created: "+filepath.Base(path)))
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newBackupListCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			backups, err := a.store.ListBackups()
			if err != nil {
				return err
			}
			if format == "json" {
				return outputJSON(cmd, backups)
			}

			t := newTable(cmd)
			t.AppendHeader(table.Row{"Name", "Created", "Size"})
			for _, b := range backups {
				t.AppendRow(table.Row{b.Name, b.CreatedAt.Local().Format(time.DateTime), formatSize(b.Size)})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	return cmd
}

func newBackupRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <name|path>",
		Short: "Replace the store with a backup",
		Long:  "Replace the whole store with a backup. The argument is a name from 'backup list' or a path to a snapshot file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			path := args[0]
			if filepath.Base(path) == path {
				if resolved, err := a.store.BackupPath(path); err == nil {
					path = resolved
				}
			}
			if err := a.store.RestoreFromBackup(path); err != nil {
				return err
			}
			_ = a.store.AddLog(models.NewOperationLog(models.OpBackup, models.OpSuccess, "restored backup: "+filepath.Base(path)))
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s\n", path)
			return nil
		},
	}
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
