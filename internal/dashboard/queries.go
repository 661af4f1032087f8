package dashboard

import (
	"fmt"
	"time"

	"github.com/calloway/ledgerdesk/internal/models"
	"github.com/calloway/ledgerdesk/internal/schedule"
	"gorm.io/gorm"
)

// OverviewCounts holds the headline numbers for the index page.
type OverviewCounts struct {
	Open        int64
	Overdue     int64
	DueThisWeek int64
	Blocked     int64
	Unassigned  int64
	ActiveRules int64
}

// Overview returns the headline counts. Open means any status except
// completed; overdue and due-this-week only count open tasks.
func Overview(db *gorm.DB, today time.Time) OverviewCounts {
	var c OverviewCounts
	if db == nil {
		return c
	}
	today = schedule.DateOnly(today)
	weekEnd := today.AddDate(0, 0, 7)

	open := db.Model(&models.Task{}).Where("status != ?", models.StatusCompleted)
	open.Count(&c.Open)

	db.Model(&models.Task{}).
		Where("status != ? AND due_date < ?", models.StatusCompleted, today).
		Count(&c.Overdue)
	db.Model(&models.Task{}).
		Where("status != ? AND due_date >= ? AND due_date < ?", models.StatusCompleted, today, weekEnd).
		Count(&c.DueThisWeek)
	db.Model(&models.Task{}).Where("status = ?", models.StatusBlocked).Count(&c.Blocked)
	db.Model(&models.Task{}).
		Where("status != ? AND assigned_user_id IS NULL", models.StatusCompleted).
		Count(&c.Unassigned)
	db.Model(&models.RecurringRule{}).Where("active = ?", true).Count(&c.ActiveRules)
	return c
}

// TaskRow holds task data for display.
type TaskRow struct {
	ID           uint
	Title        string
	Status       string
	TaskType     string
	ClientName   string
	AssigneeName string
	DueDate      *time.Time
	Overdue      bool
}

// taskRows converts tasks (with Client and AssignedUser preloaded) to rows.
func taskRows(tasks []models.Task, today time.Time) []TaskRow {
	rows := make([]TaskRow, len(tasks))
	for i, t := range tasks {
		rows[i] = TaskRow{
			ID:       t.ID,
			Title:    t.Title,
			Status:   t.Status,
			TaskType: t.TaskType,
			DueDate:  t.DueDate,
		}
		if t.Client != nil {
			rows[i].ClientName = t.Client.LegalName
		}
		if t.AssignedUser != nil {
			rows[i].AssigneeName = t.AssignedUser.Name
		}
		if t.DueDate != nil && t.Status != models.StatusCompleted && t.DueDate.Before(today) {
			rows[i].Overdue = true
		}
	}
	return rows
}

// OverdueTasks returns open tasks whose due date has passed, oldest first.
func OverdueTasks(db *gorm.DB, today time.Time, limit int) []TaskRow {
	if db == nil {
		return []TaskRow{}
	}
	today = schedule.DateOnly(today)
	var tasks []models.Task
	db.Preload("Client").Preload("AssignedUser").
		Where("status != ? AND due_date < ?", models.StatusCompleted, today).
		Order("due_date ASC, id ASC").Limit(limit).Find(&tasks)
	return taskRows(tasks, today)
}

// UpcomingTasks returns open tasks due within the next `days` days.
func UpcomingTasks(db *gorm.DB, today time.Time, days, limit int) []TaskRow {
	if db == nil {
		return []TaskRow{}
	}
	today = schedule.DateOnly(today)
	end := today.AddDate(0, 0, days)
	var tasks []models.Task
	db.Preload("Client").Preload("AssignedUser").
		Where("status != ? AND due_date >= ? AND due_date < ?", models.StatusCompleted, today, end).
		Order("due_date ASC, id ASC").Limit(limit).Find(&tasks)
	return taskRows(tasks, today)
}

// TaskFilters holds optional filters for the task list page.
type TaskFilters struct {
	Status     string
	TaskType   string
	ClientID   string
	Unassigned bool
}

// ClientOption is a (id, name) pair for the client filter dropdown.
type ClientOption struct {
	ID   uint
	Name string
}

// TaskListResult holds the task list plus metadata for filter dropdowns.
type TaskListResult struct {
	Tasks    []TaskRow
	Statuses []string
	Types    []string
	Clients  []ClientOption
}

// TaskList returns tasks matching filters, due-date order, plus distinct
// values for the filter dropdowns.
func TaskList(db *gorm.DB, filters TaskFilters, today time.Time) TaskListResult {
	if db == nil {
		return TaskListResult{Tasks: []TaskRow{}}
	}
	today = schedule.DateOnly(today)

	q := db.Model(&models.Task{}).Preload("Client").Preload("AssignedUser")
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.TaskType != "" {
		q = q.Where("task_type = ?", filters.TaskType)
	}
	if filters.ClientID != "" {
		q = q.Where("client_id = ?", filters.ClientID)
	}
	if filters.Unassigned {
		q = q.Where("assigned_user_id IS NULL")
	}

	var tasks []models.Task
	q.Order("due_date ASC, id ASC").Limit(500).Find(&tasks)

	// Distinct values for filter dropdowns.
	var statuses []string
	db.Model(&models.Task{}).Distinct("status").Order("status ASC").Pluck("status", &statuses)
	var types []string
	db.Model(&models.Task{}).Distinct("task_type").Order("task_type ASC").Pluck("task_type", &types)

	var clients []models.Client
	db.Where("active = ?", true).Order("legal_name ASC").Find(&clients)
	opts := make([]ClientOption, len(clients))
	for i, c := range clients {
		opts[i] = ClientOption{ID: c.ID, Name: c.LegalName}
	}

	return TaskListResult{
		Tasks:    taskRows(tasks, today),
		Statuses: statuses,
		Types:    types,
		Clients:  opts,
	}
}

// RunRow holds one scheduler run for display.
type RunRow struct {
	ID             string
	RunDate        time.Time
	Created        int
	Advanced       int
	SkippedRunaway int
	FinishedAt     time.Time
	Duration       string
}

// RecentRuns returns the latest scheduler runs, newest first.
func RecentRuns(db *gorm.DB, limit int) []RunRow {
	if db == nil {
		return []RunRow{}
	}
	var runs []models.SchedulerRun
	db.Order("started_at DESC").Limit(limit).Find(&runs)

	rows := make([]RunRow, len(runs))
	for i, r := range runs {
		rows[i] = RunRow{
			ID:             r.ID,
			RunDate:        r.RunDate,
			Created:        r.Created,
			Advanced:       r.Advanced,
			SkippedRunaway: r.SkippedRunaway,
			FinishedAt:     r.FinishedAt,
		}
		if !r.FinishedAt.IsZero() && !r.StartedAt.IsZero() {
			rows[i].Duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
	}
	return rows
}

// OnboardingProgress summarizes a client's onboarding checklist state.
type OnboardingProgress struct {
	Total     int64
	Completed int64
	Blocked   int64
}

// ClientDetail holds full client data for the detail page.
type ClientDetail struct {
	ID             uint
	LegalName      string
	Frequency      string
	ManagerName    string
	BookkeeperName string
	Onboarding     OnboardingProgress
	OpenTasks      []TaskRow
	Rules          []RuleRow
}

// RuleRow holds a recurring rule for display.
type RuleRow struct {
	ID           uint
	Name         string
	ScheduleType string
	NextRun      *time.Time
	Active       bool
}

// GetClientDetail returns client staffing, onboarding progress, open tasks,
// and recurring rules for the detail page.
func GetClientDetail(db *gorm.DB, id string, today time.Time) (*ClientDetail, error) {
	if db == nil {
		return nil, fmt.Errorf("no database connection")
	}
	today = schedule.DateOnly(today)

	var c models.Client
	if err := db.Preload("Manager").Preload("Bookkeeper").Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}

	detail := &ClientDetail{
		ID:        c.ID,
		LegalName: c.LegalName,
		Frequency: c.BookkeepingFrequency,
	}
	if c.Manager != nil {
		detail.ManagerName = c.Manager.Name
	}
	if c.Bookkeeper != nil {
		detail.BookkeeperName = c.Bookkeeper.Name
	}

	onb := db.Model(&models.Task{}).Where("client_id = ? AND task_type = ?", c.ID, models.TypeOnboarding)
	onb.Count(&detail.Onboarding.Total)
	db.Model(&models.Task{}).
		Where("client_id = ? AND task_type = ? AND status = ?", c.ID, models.TypeOnboarding, models.StatusCompleted).
		Count(&detail.Onboarding.Completed)
	db.Model(&models.Task{}).
		Where("client_id = ? AND task_type = ? AND status = ?", c.ID, models.TypeOnboarding, models.StatusBlocked).
		Count(&detail.Onboarding.Blocked)

	var tasks []models.Task
	db.Preload("Client").Preload("AssignedUser").
		Where("client_id = ? AND status != ?", c.ID, models.StatusCompleted).
		Order("due_date ASC, id ASC").Find(&tasks)
	detail.OpenTasks = taskRows(tasks, today)

	var rules []models.RecurringRule
	db.Where("client_id = ?", c.ID).Order("id ASC").Find(&rules)
	detail.Rules = make([]RuleRow, len(rules))
	for i, r := range rules {
		detail.Rules[i] = RuleRow{
			ID:           r.ID,
			Name:         r.Name,
			ScheduleType: r.ScheduleType,
			NextRun:      r.NextRun,
			Active:       r.Active,
		}
	}
	return detail, nil
}

// TimeAgo formats how long ago a timestamp was, like "3h ago".
func TimeAgo(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours())/24)
	}
}
