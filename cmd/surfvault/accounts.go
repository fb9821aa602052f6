package main

import (
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pysugar/surfvault/internal/store/models"
	"github.com/pysugar/surfvault/internal/util"
	"github.com/spf13/cobra"
)

func newAccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Inspect managed accounts",
	}
	cmd.AddCommand(newAccountsListCmd())
	return cmd
}

type accountOutputEntry struct {
	ID      string   `json:"id"`
	Email   string   `json:"email"`
	Name    string   `json:"nickname,omitempty"`
	Status  string   `json:"status"`
	Group   string   `json:"group,omitempty"`
	Tags    []string `json:"tags"`
	Created string   `json:"created"`
}

func newAccountsListCmd() *cobra.Command {
	var (
		format string
		group  string
		tag    string
		sortBy string
		desc   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts in the stored sort order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			settings := a.store.GetSettings()
			sortCfg := settings.Sort
			if sortBy != "" {
				sortCfg.Field = models.SortField(sortBy)
			}
			if desc {
				sortCfg.Direction = models.SortDesc
			}
			accounts, err := a.store.GetSortedAccounts(sortCfg)
			if err != nil {
				return err
			}

			entries := make([]accountOutputEntry, 0, len(accounts))
			for _, acc := range accounts {
				if (group != "" && acc.Group != group) || (tag != "" && !acc.HasTag(tag)) {
					continue
				}
				email := acc.Email
				if settings.PrivacyMode {
					email = util.MaskEmail(email)
				}
				entries = append(entries, accountOutputEntry{
					ID:      acc.ID.String(),
					Email:   email,
					Name:    acc.Nickname,
					Status:  string(acc.Status),
					Group:   acc.Group,
					Tags:    acc.Clone().Tags,
					Created: acc.CreatedAt.Format(time.RFC3339),
				})
			}
			if format == "json" {
				return outputJSON(cmd, entries)
			}

			t := newTable(cmd)
			t.AppendHeader(table.Row{"ID", "Email", "Name", "Status", "Group", "Tags"})
			for _, e := range entries {
				t.AppendRow(table.Row{e.ID[:8], e.Email, e.Name, e.Status, e.Group, strings.Join(e.Tags, ", ")})
			}
			t.AppendFooter(table.Row{"", "", "", "", "Total", len(entries)})
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	cmd.Flags().StringVar(&group, "group", "", "Only accounts in this group")
	cmd.Flags().StringVar(&tag, "tag", "", "Only accounts with this tag")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort field: created_at, email, status or manual")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	return cmd
}
