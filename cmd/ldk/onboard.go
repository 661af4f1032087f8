package main

import (
	"fmt"

	"github.com/calloway/ledgerdesk/internal/assign"
	"github.com/calloway/ledgerdesk/internal/models"
	"github.com/calloway/ledgerdesk/internal/onboarding"
	"github.com/spf13/cobra"
)

func newOnboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Manage client onboarding checklists",
	}

	cmd.AddCommand(newOnboardMaterializeCmd())
	cmd.AddCommand(newOnboardBackfillCmd())
	cmd.AddCommand(newOnboardReleaseCmd())
	cmd.AddCommand(newOnboardStatusCmd())
	cmd.AddCommand(newOnboardTemplateCmd())
	return cmd
}

func newOnboardMaterializeCmd() *cobra.Command {
	var (
		configPath string
		creatorID  uint
	)

	cmd := &cobra.Command{
		Use:   "materialize CLIENT_ID",
		Short: "Materialize onboarding templates into tasks",
		Long: `Creates one task per active onboarding template the client does not
already have. Safe to re-run: existing tasks are left alone, so this also
backfills templates added after the client was onboarded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, err := parseUint(args[0])
			if err != nil {
				return err
			}
			gormDB, cfg, err := openDB(configPath)
			if err != nil {
				return err
			}

			var client models.Client
			if err := gormDB.First(&client, clientID).Error; err != nil {
				return fmt.Errorf("load client %d: %w", clientID, err)
			}

			m := onboarding.NewMaterializer(gormDB, assign.NewResolver(gormDB, phaseSets(cfg)))
			var creator *uint
			if creatorID != 0 {
				creator = &creatorID
			}
			tasks, err := m.Materialize(&client, creator)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Materialized %d new onboarding tasks for %s\n", len(tasks), client.LegalName)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ledgerdesk.yaml", "path to Ledgerdesk config file")
	cmd.Flags().UintVar(&creatorID, "creator", 0, "creating user id, used for assignment fallback")
	return cmd
}

func newOnboardBackfillCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Materialize missing onboarding tasks for every active client",
		Long: `Runs the materialization for all active clients. Useful after adding a
new template: each client gains only the tasks it is missing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, cfg, err := openDB(configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			var clients []models.Client
			if err := gormDB.Where("active = ?", true).Order("id").Find(&clients).Error; err != nil {
				return fmt.Errorf("load clients: %w", err)
			}

			m := onboarding.NewMaterializer(gormDB, assign.NewResolver(gormDB, phaseSets(cfg)))
			created := 0
			for i := range clients {
				tasks, err := m.Materialize(&clients[i], nil)
				if err != nil {
					return fmt.Errorf("client %d (%s): %w", clients[i].ID, clients[i].LegalName, err)
				}
				if len(tasks) > 0 {
					fmt.Fprintf(out, "%s: %d new tasks\n", clients[i].LegalName, len(tasks))
				}
				created += len(tasks)
			}
			fmt.Fprintf(out, "Backfilled %d tasks across %d clients\n", created, len(clients))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ledgerdesk.yaml", "path to Ledgerdesk config file")
	return cmd
}

func newOnboardReleaseCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "release CLIENT_ID",
		Short: "Release blocked onboarding tasks if the admin work is done",
		Long: `Checks whether every admin-classified onboarding task is completed and,
if so, opens the blocked remainder of the checklist. The release normally
happens automatically when the last admin task completes; this command
re-runs the check by hand.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, err := parseUint(args[0])
			if err != nil {
				return err
			}
			gormDB, cfg, err := openDB(configPath)
			if err != nil {
				return err
			}

			m := onboarding.NewMaterializer(gormDB, assign.NewResolver(gormDB, phaseSets(cfg)))
			released, err := m.ReleaseIfReady(clientID)
			if err != nil {
				return err
			}
			if released == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing released: admin work outstanding or no blocked tasks.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Released %d onboarding tasks\n", released)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ledgerdesk.yaml", "path to Ledgerdesk config file")
	return cmd
}

func newOnboardTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage onboarding templates",
	}

	cmd.AddCommand(newOnboardTemplateListCmd())
	cmd.AddCommand(newOnboardTemplateDeactivateCmd())
	return cmd
}

func newOnboardTemplateListCmd() *cobra.Command {
	var (
		configPath string
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List onboarding templates in checklist order",
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, _, err := openDB(configPath)
			if err != nil {
				return err
			}

			q := gormDB.Order("order_index, id")
			if !all {
				q = q.Where("active = ?", true)
			}
			var templates []models.OnboardingTemplate
			if err := q.Find(&templates).Error; err != nil {
				return fmt.Errorf("list templates: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-5s %-32s %-20s %-12s %-8s %s\n", "ID", "NAME", "PHASE", "ROLE", "DUE+", "ACTIVE")
			for _, t := range templates {
				due := "-"
				if t.DefaultDueOffsetDays != nil {
					due = fmt.Sprintf("%dd", *t.DefaultDueOffsetDays)
				}
				role := t.DefaultAssignedRole
				if role == "" {
					role = "-"
				}
				fmt.Fprintf(out, "%-5d %-32s %-20s %-12s %-8s %v\n",
					t.ID, truncate(t.Name, 32), t.Phase, role, due, t.Active)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ledgerdesk.yaml", "path to Ledgerdesk config file")
	cmd.Flags().BoolVar(&all, "all", false, "include deactivated templates")
	return cmd
}

func newOnboardTemplateDeactivateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "deactivate ID",
		Short: "Retire a template from future onboarding",
		Long:  "Deactivated templates stop materializing for new clients; tasks already created stay as they are.",
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

			result := gormDB.Model(&models.OnboardingTemplate{}).Where("id = ?", id).Update("active", false)
			if result.Error != nil {
				return fmt.Errorf("deactivate template %d: %w", id, result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("template %d not found", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deactivated template %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ledgerdesk.yaml", "path to Ledgerdesk config file")
	return cmd
}

func newOnboardStatusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status CLIENT_ID",
		Short: "Show a client's onboarding checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, err := parseUint(args[0])
			if err != nil {
				return err
			}
			gormDB, _, err := openDB(configPath)
			if err != nil {
				return err
			}

			var tasks []models.Task
			if err := gormDB.Preload("AssignedUser").
				Where("client_id = ? AND task_type = ?", clientID, models.TypeOnboarding).
				Order("id").Find(&tasks).Error; err != nil {
				return fmt.Errorf("load onboarding tasks for client %d: %w", clientID, err)
			}
			printTaskTable(cmd.OutOrStdout(), tasks)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ledgerdesk.yaml", "path to Ledgerdesk config file")
	return cmd
}
