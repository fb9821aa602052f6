package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pysugar/surfvault/internal/api"
	"github.com/pysugar/surfvault/internal/version"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		host      string
		port      int
		statePath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the management API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				a.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			svc, err := a.service()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if interval := a.cfg.Storage.BackupInterval.Std(); interval > 0 {
				a.store.StartBackupLoop(ctx, interval)
				log.Printf("💾 Periodic backups every %s (keep %d)", interval, a.cfg.Storage.BackupRetention)
			}

			handler := api.NewRouter(svc, api.Options{
				AdminKey:       a.cfg.Server.AdminKey,
				LocalStatePath: statePath,
				AccessLog:      true,
			})
			srv := &http.Server{
				Addr:              a.cfg.Addr(),
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			log.Printf("🚀 surfvault %s starting on http://%s", version.Version, a.cfg.Addr())
			log.Printf("📂 Data directory: %s", a.store.DataDir())
			if a.cfg.Server.AdminKey == "" {
				log.Printf("⚠️ No admin key configured, the API is open to anyone who can reach %s", a.cfg.Addr())
			} else {
				log.Printf("🔐 API protected by admin key")
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			log.Printf("🛑 Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host (overrides server.host)")
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (overrides server.port)")
	cmd.Flags().StringVar(&statePath, "state-db", "", "Local client state store (default: auto-detect)")

	return cmd
}
