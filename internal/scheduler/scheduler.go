// Package scheduler materializes concrete tasks from active recurring rules.
package scheduler

import (
	"fmt"
	"time"

	"github.com/calloway/ledgerdesk/internal/models"
	"github.com/calloway/ledgerdesk/internal/schedule"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// runawayLimit caps catch-up iterations per rule per run. 36 covers three
// years of monthly backlog; a rule that needs more is misconfigured.
const runawayLimit = 36

// RunResult summarizes one scheduler run. The counts are operational
// visibility, not correctness.
type RunResult struct {
	RunID          string
	Today          time.Time
	Created        int
	Advanced       int
	SkippedRunaway int
}

// RunOnce processes every active rule up to today. It is safe to invoke at
// arbitrary times and repeatedly on the same day: existing (rule, due date)
// tasks are never duplicated, and a run with nothing due changes nothing.
func RunOnce(db *gorm.DB, today time.Time) (*RunResult, error) {
	today = schedule.DateOnly(today)
	res := &RunResult{RunID: uuid.NewString(), Today: today}
	startedAt := time.Now()

	var rules []models.RecurringRule
	if err := db.Where("active = ?", true).Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("scheduler: load active rules: %w", err)
	}

	for i := range rules {
		rule := &rules[i]
		// Malformed rule without a cursor: skipped, not an error.
		if rule.NextRun == nil {
			continue
		}
		created, advanced, runaway, err := processRule(db, rule, today)
		res.Created += created
		res.Advanced += advanced
		if runaway {
			res.SkippedRunaway++
		}
		if err != nil {
			return res, fmt.Errorf("scheduler: rule %d (%s): %w", rule.ID, rule.Name, err)
		}
	}

	run := models.SchedulerRun{
		ID:             res.RunID,
		RunDate:        today,
		Created:        res.Created,
		Advanced:       res.Advanced,
		SkippedRunaway: res.SkippedRunaway,
		StartedAt:      startedAt,
		FinishedAt:     time.Now(),
	}
	if err := db.Create(&run).Error; err != nil {
		return res, fmt.Errorf("scheduler: record run: %w", err)
	}
	return res, nil
}

// processRule walks a rule's cursor up to today, creating one task per due
// date. Each occurrence commits task-then-cursor in one transaction, so a
// crash mid-run re-processes that occurrence next run instead of losing it.
func processRule(db *gorm.DB, rule *models.RecurringRule, today time.Time) (created, advanced int, runaway bool, err error) {
	anchor := schedule.Anchor{
		DayOfMonth:  rule.DayOfMonth,
		Weekday:     rule.Weekday,
		WeekOfMonth: rule.WeekOfMonth,
	}

	loops := 0
	for rule.NextRun != nil && !schedule.DateOnly(*rule.NextRun).After(today) {
		loops++
		if loops > runawayLimit {
			return created, advanced, true, nil
		}

		due := schedule.DateOnly(*rule.NextRun)
		next := schedule.Advance(rule.ScheduleType, due, anchor)

		txErr := db.Transaction(func(tx *gorm.DB) error {
			madeNew, err := ensureTask(tx, rule, due)
			if err != nil {
				return err
			}
			if madeNew {
				created++
			}
			if err := tx.Model(&models.RecurringRule{}).
				Where("id = ?", rule.ID).
				Update("next_run", next).Error; err != nil {
				return fmt.Errorf("advance cursor: %w", err)
			}
			return nil
		})
		if txErr != nil {
			return created, advanced, false, txErr
		}

		rule.NextRun = &next
		advanced++
	}
	return created, advanced, false, nil
}

// ensureTask creates the task for (rule, due) unless it already exists.
// The pre-check keeps retries quiet; the store's unique index on
// (recurring_rule_id, due_date) is what actually prevents duplicates when
// two runs overlap, so the insert swallows conflicts instead of erroring.
func ensureTask(tx *gorm.DB, rule *models.RecurringRule, due time.Time) (bool, error) {
	var count int64
	if err := tx.Model(&models.Task{}).
		Where("recurring_rule_id = ? AND due_date = ?", rule.ID, due).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check existing task: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	status := rule.DefaultStatus
	if status == "" {
		status = models.StatusNew
	}
	ruleID := rule.ID
	dueDate := due
	task := models.Task{
		Title:           rule.Name,
		Description:     rule.Description,
		Status:          status,
		TaskType:        models.TypeRecurring,
		DueDate:         &dueDate,
		ClientID:        rule.ClientID,
		AssignedUserID:  rule.AssignedUserID,
		RecurringRuleID: &ruleID,
	}

	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&task)
	if result.Error != nil {
		return false, fmt.Errorf("create task: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
