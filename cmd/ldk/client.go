package main

import (
	"fmt"

	"github.com/calloway/ledgerdesk/internal/assign"
	"github.com/calloway/ledgerdesk/internal/models"
	"github.com/calloway/ledgerdesk/internal/onboarding"
	"github.com/spf13/cobra"
)

func newClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage clients",
	}

	cmd.AddCommand(newClientAddCmd())
	cmd.AddCommand(newClientListCmd())
	return cmd
}

func newClientAddCmd() *cobra.Command {
	var (
		configPath     string
		frequency      string
		managerID      uint
		bookkeeperID   uint
		creatorID      uint
		skipOnboarding bool
	)

	cmd := &cobra.Command{
		Use:   "add LEGAL_NAME",
		Short: "Add a client and start its onboarding checklist",
		Long: `Creates a client and materializes the active onboarding templates into
tasks: admin-classified work opens immediately, the rest stays blocked until
the admin work completes. Use --skip-onboarding for clients migrated mid-engagement.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, cfg, err := openDB(configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			client := models.Client{
				LegalName:            args[0],
				BookkeepingFrequency: frequency,
				Active:               true,
			}
			if managerID != 0 {
				client.ManagerID = &managerID
			}
			if bookkeeperID != 0 {
				client.BookkeeperID = &bookkeeperID
			}
			if err := gormDB.Create(&client).Error; err != nil {
				return fmt.Errorf("create client: %w", err)
			}
			fmt.Fprintf(out, "Created client %d: %s\n", client.ID, client.LegalName)

			if skipOnboarding {
				return nil
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
			open, blocked := 0, 0
			for _, t := range tasks {
				if t.Status == models.StatusBlocked {
					blocked++
				} else {
					open++
				}
			}
			fmt.Fprintf(out, "Onboarding: %d tasks open, %d blocked pending admin work\n", open, blocked)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ledgerdesk.yaml", "path to Ledgerdesk config file")
	cmd.Flags().StringVar(&frequency, "frequency", "monthly", "bookkeeping frequency: monthly, quarterly, or annually")
	cmd.Flags().UintVar(&managerID, "manager", 0, "manager user id")
	cmd.Flags().UintVar(&bookkeeperID, "bookkeeper", 0, "bookkeeper user id")
	cmd.Flags().UintVar(&creatorID, "creator", 0, "creating user id, used for assignment fallback")
	cmd.Flags().BoolVar(&skipOnboarding, "skip-onboarding", false, "do not materialize onboarding tasks")
	return cmd
}

func newClientListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, _, err := openDB(configPath)
			if err != nil {
				return err
			}

			var clients []models.Client
			if err := gormDB.Preload("Manager").Preload("Bookkeeper").Order("id").Find(&clients).Error; err != nil {
				return fmt.Errorf("list clients: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-5s %-32s %-10s %-20s %s\n", "ID", "LEGAL NAME", "FREQ", "MANAGER", "BOOKKEEPER")
			for _, c := range clients {
				manager, bookkeeper := "-", "-"
				if c.Manager != nil {
					manager = c.Manager.Name
				}
				if c.Bookkeeper != nil {
					bookkeeper = c.Bookkeeper.Name
				}
				fmt.Fprintf(out, "%-5d %-32s %-10s %-20s %s\n",
					c.ID, truncate(c.LegalName, 32), c.BookkeepingFrequency, manager, bookkeeper)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ledgerdesk.yaml", "path to Ledgerdesk config file")
	return cmd
}
