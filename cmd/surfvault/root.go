package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pysugar/surfvault/internal/auth/token"
	"github.com/pysugar/surfvault/internal/config"
	"github.com/pysugar/surfvault/internal/store"
	"github.com/pysugar/surfvault/internal/upstream"
	"github.com/pysugar/surfvault/internal/workflow"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "surfvault",
	Short:        "surfvault - a local vault for editor service accounts",
	Long:         "surfvault keeps service accounts, their tokens and usage history in a local store and runs team operations on their behalf.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $SURFVAULT_CONFIG or $XDG_DATA_HOME/surfvault/config.yaml)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newBackupCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newAccountsCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// app is what every command needs: the loaded config and the open store.
type app struct {
	cfg   *config.Config
	store *store.Store
}

func openApp() (*app, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	s, err := store.Open(cfg.Storage.DataDir, store.Options{
		MaxLogs:         cfg.Storage.MaxLogs,
		BackupRetention: cfg.Storage.BackupRetention,
	})
	if err != nil {
		return nil, fmt.Errorf("open store in %s: %w", cfg.Storage.DataDir, err)
	}
	return &app{cfg: cfg, store: s}, nil
}

// service wires the remote client and token manager. The proxy comes from
// the stored settings.
func (a *app) service() (*workflow.Service, error) {
	settings := a.store.GetSettings()
	proxyURL := ""
	if settings.ProxyEnabled {
		proxyURL = settings.ProxyURL
	}
	client, err := upstream.NewClient(upstream.Options{
		BaseURL:      a.cfg.Upstream.BaseURL,
		AnalyticsURL: a.cfg.Upstream.AnalyticsURL,
		Timeout:      a.cfg.Upstream.Timeout.Std(),
		ProxyURL:     proxyURL,
	})
	if err != nil {
		return nil, err
	}
	refresher := token.NewOAuth2Refresher(token.OAuthConfig(token.OAuthSettings{
		TokenURL:     a.cfg.Auth.TokenURL,
		ClientID:     a.cfg.Auth.ClientID,
		ClientSecret: a.cfg.Auth.ClientSecret,
		APIKey:       a.cfg.Auth.APIKey,
	}), client.HTTPClient())

	return workflow.NewService(token.NewManager(a.store, refresher), client, workflow.Options{
		PollAttempts: a.cfg.Transfer.PollAttempts,
		PollDelay:    a.cfg.Transfer.PollDelay.Std(),
		TimeZone:     a.cfg.Analytics.TimeZone,
	}), nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func checkFormat(format string) error {
	switch format {
	case "table", "json":
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
	}
}

// newTable returns a table writer mirrored to the command output and fitted
// to the terminal when stdout is one.
func newTable(cmd *cobra.Command) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	if cmd.OutOrStdout() == os.Stdout {
		if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
			t.SetAllowedRowLength(width)
		}
	}
	return t
}
