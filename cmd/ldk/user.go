package main

import (
	"fmt"
	"strings"

	"github.com/calloway/ledgerdesk/internal/models"
	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage staff members",
	}

	cmd.AddCommand(newUserAddCmd())
	cmd.AddCommand(newUserListCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	var (
		configPath string
		email      string
		role       string
	)

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a staff member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role = strings.ToLower(strings.TrimSpace(role))
			switch role {
			case "bookkeeper", "manager", "admin", "owner":
			default:
				return fmt.Errorf("invalid role %q (want bookkeeper, manager, admin, or owner)", role)
			}

			gormDB, _, err := openDB(configPath)
			if err != nil {
				return err
			}

			user := models.User{
				Name:     args[0],
				Email:    email,
				Role:     role,
				IsActive: true,
			}
			if err := gormDB.Create(&user).Error; err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %d: %s (%s)\n", user.ID, user.Name, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ledgerdesk.yaml", "path to Ledgerdesk config file")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&role, "role", "bookkeeper", "role: bookkeeper, manager, admin, or owner")
	return cmd
}

func newUserListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List staff members",
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, _, err := openDB(configPath)
			if err != nil {
				return err
			}

			var users []models.User
			if err := gormDB.Order("id").Find(&users).Error; err != nil {
				return fmt.Errorf("list users: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-5s %-24s %-28s %-12s %s\n", "ID", "NAME", "EMAIL", "ROLE", "ACTIVE")
			for _, u := range users {
				fmt.Fprintf(out, "%-5d %-24s %-28s %-12s %v\n", u.ID, u.Name, u.Email, u.Role, u.IsActive)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ledgerdesk.yaml", "path to Ledgerdesk config file")
	return cmd
}
