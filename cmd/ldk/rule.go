package main

import (
	"fmt"
	"time"

	"github.com/calloway/ledgerdesk/internal/rule"
	"github.com/spf13/cobra"
)

func newRuleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Manage recurring rules",
	}

	cmd.AddCommand(newRuleAddCmd())
	cmd.AddCommand(newRuleListCmd())
	cmd.AddCommand(newRuleDeactivateCmd())
	return cmd
}

func newRuleAddCmd() *cobra.Command {
	var (
		configPath   string
		description  string
		scheduleType string
		dayOfMonth   int
		weekday      int
		weekOfMonth  int
		firstDue     string
		clientID     uint
		assigneeID   uint
	)

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a recurring rule",
		Long: `Creates a recurring rule and materializes its first task immediately.

The schedule anchors on either --day (day of month, clamped to short months)
or --weekday with --week (1-4, or -1 for the last occurrence). With neither,
due dates keep the day of month of the previous occurrence. Schedule type
client_frequency resolves the client's bookkeeping frequency at creation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, _, err := openDB(configPath)
			if err != nil {
				return err
			}

			opts := rule.CreateOpts{
				Name:         args[0],
				Description:  description,
				ScheduleType: scheduleType,
			}
			if cmd.Flags().Changed("day") {
				opts.DayOfMonth = &dayOfMonth
			}
			if cmd.Flags().Changed("weekday") {
				opts.Weekday = &weekday
			}
			if cmd.Flags().Changed("week") {
				opts.WeekOfMonth = &weekOfMonth
			}
			if clientID != 0 {
				opts.ClientID = &clientID
			}
			if assigneeID != 0 {
				opts.AssignedUserID = &assigneeID
			}
			if firstDue != "" {
				d, err := parseDate(firstDue)
				if err != nil {
					return err
				}
				opts.NextRun = &d
			}

			r, err := rule.Create(gormDB, opts, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created rule %d: %s (%s), first task materialized, next run %s\n",
				r.ID, r.Name, r.ScheduleType, formatDue(r.NextRun))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ledgerdesk.yaml", "path to Ledgerdesk config file")
	cmd.Flags().StringVar(&description, "description", "", "rule description, copied to each task")
	cmd.Flags().StringVar(&scheduleType, "schedule", "monthly", "monthly, quarterly, annual, or client_frequency")
	cmd.Flags().IntVar(&dayOfMonth, "day", 0, "anchor day of month (1-31)")
	cmd.Flags().IntVar(&weekday, "weekday", 0, "anchor weekday (0=Sunday .. 6=Saturday)")
	cmd.Flags().IntVar(&weekOfMonth, "week", 0, "occurrence within the month (1-4, -1 for last)")
	cmd.Flags().StringVar(&firstDue, "first-due", "", "explicit first due date (YYYY-MM-DD)")
	cmd.Flags().UintVar(&clientID, "client", 0, "client id")
	cmd.Flags().UintVar(&assigneeID, "assignee", 0, "assigned user id")
	return cmd
}

func newRuleListCmd() *cobra.Command {
	var (
		configPath string
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recurring rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, _, err := openDB(configPath)
			if err != nil {
				return err
			}
			rules, err := rule.List(gormDB, !all)
			if err != nil {
				return err
			}
			printRuleTable(cmd.OutOrStdout(), rules)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ledgerdesk.yaml", "path to Ledgerdesk config file")
	cmd.Flags().BoolVar(&all, "all", false, "include deactivated rules")
	return cmd
}

func newRuleDeactivateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "deactivate ID",
		Short: "Stop a rule from producing further tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUint(args[0])
			if err != nil {
				return err
			}
			gormDB, _, err := openDB(configPath)
			if err != nil {
				return err
			}
			if err := rule.Deactivate(gormDB, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deactivated rule %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ledgerdesk.yaml", "path to Ledgerdesk config file")
	return cmd
}
