package main

import (
	"fmt"
	"strings"

	"github.com/calloway/ledgerdesk/internal/assign"
	"github.com/calloway/ledgerdesk/internal/models"
	"github.com/calloway/ledgerdesk/internal/onboarding"
	"github.com/calloway/ledgerdesk/internal/task"
	"github.com/spf13/cobra"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	cmd.AddCommand(newTaskAddCmd())
	cmd.AddCommand(newTaskListCmd())
	cmd.AddCommand(newTaskStatusCmd())
	cmd.AddCommand(newTaskCompleteCmd())
	cmd.AddCommand(newTaskLinkCmd())
	return cmd
}

func newTaskAddCmd() *cobra.Command {
	var (
		configPath  string
		description string
		due         string
		clientID    uint
		clientIDs   []uint
		assigneeID  uint
		creatorID   uint
	)

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Add an ad hoc or intercompany task",
		Long: `Creates a one-off task. With --clients (two or more ids), creates an
intercompany task instead: every listed client must check off before the
task can complete.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, _, err := openDB(configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			opts := task.CreateOpts{
				Title:       args[0],
				Description: description,
			}
			if due != "" {
				d, err := parseDate(due)
				if err != nil {
					return err
				}
				opts.DueDate = &d
			}
			if assigneeID != 0 {
				opts.AssignedUserID = &assigneeID
			}
			if creatorID != 0 {
				opts.CreatedByID = &creatorID
			}

			if len(clientIDs) > 0 {
				t, err := task.CreateIntercompany(gormDB, opts, clientIDs)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Created intercompany task %d: %s (%d linked clients)\n",
					t.ID, t.Title, len(t.ClientLinks))
				return nil
			}

			if clientID != 0 {
				opts.ClientID = &clientID
			}
			t, err := task.Create(gormDB, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Created task %d: %s\n", t.ID, t.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ledgerdesk.yaml", "path to Ledgerdesk config file")
	cmd.Flags().StringVar(&description, "description", "", "task description")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().UintVar(&clientID, "client", 0, "client id")
	cmd.Flags().UintSliceVar(&clientIDs, "clients", nil, "linked client ids for an intercompany task")
	cmd.Flags().UintVar(&assigneeID, "assignee", 0, "assigned user id")
	cmd.Flags().UintVar(&creatorID, "creator", 0, "creating user id")
	return cmd
}

func newTaskListCmd() *cobra.Command {
	var (
		configPath string
		status     string
		taskType   string
		clientID   uint
		unassigned bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, _, err := openDB(configPath)
			if err != nil {
				return err
			}

			filters := task.ListFilters{
				Status:     status,
				TaskType:   taskType,
				Unassigned: unassigned,
			}
			if clientID != 0 {
				filters.ClientID = &clientID
			}
			tasks, err := task.List(gormDB, filters)
			if err != nil {
				return err
			}
			printTaskTable(cmd.OutOrStdout(), tasks)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ledgerdesk.yaml", "path to Ledgerdesk config file")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&taskType, "type", "", "filter by task type")
	cmd.Flags().UintVar(&clientID, "client", 0, "filter by client id")
	cmd.Flags().BoolVar(&unassigned, "unassigned", false, "only unassigned tasks")
	return cmd
}

func newTaskStatusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status ID STATUS",
		Short: "Set a task's status",
		Long:  "Valid statuses: new, blocked, in_progress, waiting_on_client, completed.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUint(args[0])
			if err != nil {
				return err
			}
			return setTaskStatus(cmd, configPath, id, strings.ToLower(args[1]))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ledgerdesk.yaml", "path to Ledgerdesk config file")
	return cmd
}

func newTaskCompleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "complete ID",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUint(args[0])
			if err != nil {
				return err
			}
			return setTaskStatus(cmd, configPath, id, models.StatusCompleted)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ledgerdesk.yaml", "path to Ledgerdesk config file")
	return cmd
}

func setTaskStatus(cmd *cobra.Command, configPath string, id uint, status string) error {
	gormDB, cfg, err := openDB(configPath)
	if err != nil {
		return err
	}

	m := onboarding.NewMaterializer(gormDB, assign.NewResolver(gormDB, phaseSets(cfg)))
	t, err := task.SetStatus(gormDB, id, status, m)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task %d: %s → %s\n", t.ID, t.Title, t.Status)
	return nil
}

func newTaskLinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Manage intercompany client sign-offs",
	}

	cmd.AddCommand(newTaskLinkCheckCmd(true))
	cmd.AddCommand(newTaskLinkCheckCmd(false))
	cmd.AddCommand(newTaskLinkStatusCmd())
	return cmd
}

func newTaskLinkCheckCmd(check bool) *cobra.Command {
	var (
		configPath string
		userID     uint
	)

	use, short := "check TASK_ID CLIENT_ID", "Check off one linked client"
	if !check {
		use, short = "uncheck TASK_ID CLIENT_ID", "Revert one linked client's sign-off"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseUint(args[0])
			if err != nil {
				return err
			}
			clientID, err := parseUint(args[1])
			if err != nil {
				return err
			}
			gormDB, _, err := openDB(configPath)
			if err != nil {
				return err
			}

			var user *uint
			if userID != 0 {
				user = &userID
			}
			if _, err := task.SetLinkCompletion(gormDB, taskID, clientID, check, user); err != nil {
				return err
			}

			total, completed, err := task.LinkProgress(gormDB, taskID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %d: %d/%d clients checked off\n", taskID, completed, total)
			if check && completed == total {
				fmt.Fprintln(cmd.OutOrStdout(), "All clients checked off; run `ldk task complete` to close it out.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ledgerdesk.yaml", "path to Ledgerdesk config file")
	cmd.Flags().UintVar(&userID, "user", 0, "user id recorded on the sign-off")
	return cmd
}

func newTaskLinkStatusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status TASK_ID",
		Short: "Show sign-off progress for an intercompany task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseUint(args[0])
			if err != nil {
				return err
			}
			gormDB, _, err := openDB(configPath)
			if err != nil {
				return err
			}

			t, err := task.Get(gormDB, taskID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Task %d: %s (%s)\n", t.ID, t.Title, t.Status)
			for _, link := range t.ClientLinks {
				mark := " "
				when := ""
				if link.IsCompleted {
					mark = "x"
					if link.CompletedAt != nil {
						when = " on " + link.CompletedAt.Format("2006-01-02")
					}
				}
				fmt.Fprintf(out, "  [%s] client %d%s\n", mark, link.ClientID, when)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ledgerdesk.yaml", "path to Ledgerdesk config file")
	return cmd
}
