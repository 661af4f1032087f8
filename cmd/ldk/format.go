package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/calloway/ledgerdesk/internal/assign"
	"github.com/calloway/ledgerdesk/internal/config"
	"github.com/calloway/ledgerdesk/internal/db"
	"github.com/calloway/ledgerdesk/internal/models"
	"github.com/calloway/ledgerdesk/internal/notify"
	"github.com/calloway/ledgerdesk/internal/notify/discord"
	"github.com/calloway/ledgerdesk/internal/notify/slack"
	"gorm.io/gorm"
)

// openDB loads the config file and connects to the configured store.
func openDB(configPath string) (*gorm.DB, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return gormDB, cfg, nil
}

// phaseSets builds the phase classification from config overrides, falling
// back to the built-in defaults when a list is empty.
func phaseSets(cfg *config.Config) assign.PhaseSets {
	sets := assign.DefaultPhaseSets()
	admin, bookkeeper := cfg.PhaseLists()
	if len(admin) > 0 {
		sets.Admin = make(map[string]bool, len(admin))
		for _, p := range admin {
			sets.Admin[p] = true
		}
	}
	if len(bookkeeper) > 0 {
		sets.Bookkeeper = make(map[string]bool, len(bookkeeper))
		for _, p := range bookkeeper {
			sets.Bookkeeper[p] = true
		}
	}
	return sets
}

// buildSender assembles the configured chat senders. Both platforms empty
// means no notifications; nil, nil is the quiet path, not an error.
func buildSender(cfg *config.Config) (notify.Sender, error) {
	var senders notify.Multi
	if cfg.Notify.Slack.BotToken != "" {
		s, err := slack.New(slack.Opts{
			BotToken:  cfg.Notify.Slack.BotToken,
			ChannelID: cfg.Notify.Slack.ChannelID,
		})
		if err != nil {
			return nil, err
		}
		senders = append(senders, s)
	}
	if cfg.Notify.Discord.BotToken != "" {
		d, err := discord.New(discord.Opts{
			BotToken:  cfg.Notify.Discord.BotToken,
			ChannelID: cfg.Notify.Discord.ChannelID,
		})
		if err != nil {
			return nil, err
		}
		senders = append(senders, d)
	}
	if len(senders) == 0 {
		return nil, nil
	}
	return senders, nil
}

// parseUint parses a positive integer id from a CLI argument.
func parseUint(s string) (uint, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(v), nil
}

// parseDate parses a YYYY-MM-DD CLI argument.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

// formatDue renders a nullable due date for table output.
func formatDue(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

// printTaskTable renders tasks as an aligned table.
func printTaskTable(out io.Writer, tasks []models.Task) {
	fmt.Fprintf(out, "%-5s %-10s %-32s %-12s %-17s %s\n", "ID", "DUE", "TITLE", "TYPE", "STATUS", "ASSIGNEE")
	for _, t := range tasks {
		assignee := "-"
		if t.AssignedUser != nil {
			assignee = t.AssignedUser.Name
		} else if t.AssignedUserID != nil {
			assignee = fmt.Sprintf("user %d", *t.AssignedUserID)
		}
		fmt.Fprintf(out, "%-5d %-10s %-32s %-12s %-17s %s\n",
			t.ID, formatDue(t.DueDate), truncate(t.Title, 32), t.TaskType, t.Status, assignee)
	}
}

// printRuleTable renders recurring rules as an aligned table.
func printRuleTable(out io.Writer, rules []models.RecurringRule) {
	fmt.Fprintf(out, "%-5s %-32s %-10s %-10s %s\n", "ID", "NAME", "SCHEDULE", "NEXT", "ACTIVE")
	for _, r := range rules {
		fmt.Fprintf(out, "%-5d %-32s %-10s %-10s %v\n",
			r.ID, truncate(r.Name, 32), r.ScheduleType, formatDue(r.NextRun), r.Active)
	}
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
