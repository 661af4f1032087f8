package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/calloway/ledgerdesk/internal/scheduler"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the recurring-task scheduler",
	}

	cmd.AddCommand(newRunOnceCmd())
	cmd.AddCommand(newRunDaemonCmd())
	return cmd
}

func newRunOnceCmd() *cobra.Command {
	var (
		configPath string
		asOf       string
	)

	cmd := &cobra.Command{
		Use:   "once",
		Short: "Process all active rules up to today and exit",
		Long: `Materializes tasks for every active rule whose cursor is at or before
today, catching up missed periods one task per due date. Re-running on the
same day is a no-op. --as-of runs against a different date, useful for
backfilling after downtime.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, _, err := openDB(configPath)
			if err != nil {
				return err
			}

			today := time.Now()
			if asOf != "" {
				today, err = parseDate(asOf)
				if err != nil {
					return err
				}
			}

			res, err := scheduler.RunOnce(gormDB, today)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s for %s\n", res.RunID, res.Today.Format("2006-01-02"))
			fmt.Fprintf(out, "Created %d tasks, advanced %d cursors\n", res.Created, res.Advanced)
			if res.SkippedRunaway > 0 {
				fmt.Fprintf(out, "WARNING: %d rule(s) hit the catch-up cap; check their next_run dates\n", res.SkippedRunaway)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ledgerdesk.yaml", "path to Ledgerdesk config file")
	cmd.Flags().StringVar(&asOf, "as-of", "", "run as of this date (YYYY-MM-DD) instead of today")
	return cmd
}

func newRunDaemonCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the scheduler on a cron cadence until interrupted",
		Long: `Fires a scheduler run on the configured cron expression (default daily
at 06:00) and posts run reports to the configured chat channels.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, cfg, err := openDB(configPath)
			if err != nil {
				return err
			}

			sender, err := buildSender(cfg)
			if err != nil {
				return err
			}
			if sender != nil {
				defer sender.Close()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return scheduler.RunDaemon(ctx, scheduler.DaemonOpts{
				DB:       gormDB,
				CronExpr: cfg.Scheduler.Cron,
				Sender:   sender,
				Out:      cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ledgerdesk.yaml", "path to Ledgerdesk config file")
	return cmd
}
