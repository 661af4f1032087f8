// Package rule creates and manages recurring rules. Creation resolves
// client_frequency to a concrete schedule type, seeds the cursor, and
// materializes the first task so a fresh rule is visible on the board
// immediately instead of after the next scheduler run.
package rule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/calloway/ledgerdesk/internal/models"
	"github.com/calloway/ledgerdesk/internal/schedule"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNoClientFrequency is returned when a client_frequency rule names a
// client without a bookkeeping frequency, or no client at all.
var ErrNoClientFrequency = errors.New("rule: client_frequency rule needs a client with a bookkeeping frequency")

// CreateOpts carries operator input for a new rule. ScheduleType may be
// client_frequency when ClientID is set; NextRun left nil is seeded from
// today's date with NextOnOrAfter.
type CreateOpts struct {
	Name         string
	Description  string
	ScheduleType string

	DayOfMonth  *int
	Weekday     *int
	WeekOfMonth *int

	NextRun        *time.Time
	ClientID       *uint
	AssignedUserID *uint
	DefaultStatus  string
}

// Create stores a new active rule, materializes its first task, and leaves
// NextRun pointing at the second occurrence. Rule, task, and cursor are
// committed in one transaction.
func Create(db *gorm.DB, opts CreateOpts, today time.Time) (*models.RecurringRule, error) {
	if strings.TrimSpace(opts.Name) == "" {
		return nil, errors.New("rule: name is required")
	}

	scheduleType, err := resolveType(db, opts)
	if err != nil {
		return nil, err
	}

	anchor := schedule.Anchor{
		DayOfMonth:  opts.DayOfMonth,
		Weekday:     opts.Weekday,
		WeekOfMonth: opts.WeekOfMonth,
	}
	first := schedule.DateOnly(today)
	if opts.NextRun != nil {
		first = schedule.DateOnly(*opts.NextRun)
	} else {
		first = schedule.NextOnOrAfter(scheduleType, first, anchor)
	}
	second := schedule.Advance(scheduleType, first, anchor)

	status := opts.DefaultStatus
	if status == "" {
		status = models.StatusNew
	}

	r := models.RecurringRule{
		Name:           opts.Name,
		Description:    opts.Description,
		ScheduleType:   scheduleType,
		DayOfMonth:     opts.DayOfMonth,
		Weekday:        opts.Weekday,
		WeekOfMonth:    opts.WeekOfMonth,
		NextRun:        &second,
		ClientID:       opts.ClientID,
		AssignedUserID: opts.AssignedUserID,
		DefaultStatus:  status,
		Active:         true,
	}

	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&r).Error; err != nil {
			return fmt.Errorf("store rule: %w", err)
		}
		ruleID := r.ID
		due := first
		task := models.Task{
			Title:           r.Name,
			Description:     r.Description,
			Status:          status,
			TaskType:        models.TypeRecurring,
			DueDate:         &due,
			ClientID:        r.ClientID,
			AssignedUserID:  r.AssignedUserID,
			RecurringRuleID: &ruleID,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&task).Error; err != nil {
			return fmt.Errorf("materialize first task: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("rule: create %q: %w", opts.Name, txErr)
	}
	return &r, nil
}

// resolveType turns the operator's schedule label into a stored concrete
// type. client_frequency reads the client's bookkeeping frequency.
func resolveType(db *gorm.DB, opts CreateOpts) (string, error) {
	label := strings.ToLower(strings.TrimSpace(opts.ScheduleType))
	if label != schedule.ClientFrequency {
		if label == "" {
			label = schedule.Monthly
		}
		return schedule.ResolveScheduleType(label), nil
	}

	if opts.ClientID == nil {
		return "", ErrNoClientFrequency
	}
	var client models.Client
	if err := db.First(&client, *opts.ClientID).Error; err != nil {
		return "", fmt.Errorf("rule: load client %d: %w", *opts.ClientID, err)
	}
	if strings.TrimSpace(client.BookkeepingFrequency) == "" {
		return "", ErrNoClientFrequency
	}
	return schedule.ResolveScheduleType(client.BookkeepingFrequency), nil
}

// List returns rules, optionally only active ones, ordered by id.
func List(db *gorm.DB, activeOnly bool) ([]models.RecurringRule, error) {
	q := db.Order("id")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var rules []models.RecurringRule
	if err := q.Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("rule: list: %w", err)
	}
	return rules, nil
}

// Deactivate stops a rule from producing further tasks. Already
// materialized tasks are untouched.
func Deactivate(db *gorm.DB, id uint) error {
	result := db.Model(&models.RecurringRule{}).Where("id = ?", id).Update("active", false)
	if result.Error != nil {
		return fmt.Errorf("rule: deactivate %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("rule: deactivate %d: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}
