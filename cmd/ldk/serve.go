package main

import (
	"os/signal"
	"syscall"

	"github.com/calloway/ledgerdesk/internal/dashboard"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ops dashboard",
		Long:  "Serves the web dashboard: overdue and upcoming work, blocked onboarding, and scheduler run history.",
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, cfg, err := openDB(configPath)
			if err != nil {
				return err
			}

			if port == 0 {
				port = cfg.Dashboard.Port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return dashboard.Start(ctx, dashboard.StartOpts{
				DB:   gormDB,
				Port: port,
				Out:  cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ledgerdesk.yaml", "path to Ledgerdesk config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config)")
	return cmd
}
