// Package task provides task lifecycle operations.
package task

import (
	"errors"
	"fmt"
	"time"

	"github.com/calloway/ledgerdesk/internal/models"
	"github.com/calloway/ledgerdesk/internal/onboarding"
	"gorm.io/gorm"
)

// ErrLinksOutstanding signals a completion attempt on an intercompany task
// while at least one linked client has not checked off. The task's status is
// left unchanged.
var ErrLinksOutstanding = errors.New("task: all linked clients must be checked off first")

// CreateOpts holds parameters for creating a new task.
type CreateOpts struct {
	Title          string
	Description    string
	Status         string // empty → new
	TaskType       string // empty → ad_hoc
	DueDate        *time.Time
	ClientID       *uint
	AssignedUserID *uint
	CreatedByID    *uint
}

// ListFilters holds optional filters for listing tasks.
type ListFilters struct {
	ClientID   *uint
	Status     string
	TaskType   string
	Unassigned bool // only tasks without an assignee
}

// Create creates a task.
func Create(db *gorm.DB, opts CreateOpts) (*models.Task, error) {
	if opts.Title == "" {
		return nil, fmt.Errorf("task: title is required")
	}
	if opts.Status == "" {
		opts.Status = models.StatusNew
	}
	if opts.TaskType == "" {
		opts.TaskType = models.TypeAdHoc
	}

	task := models.Task{
		Title:          opts.Title,
		Description:    opts.Description,
		Status:         opts.Status,
		TaskType:       opts.TaskType,
		DueDate:        opts.DueDate,
		ClientID:       opts.ClientID,
		AssignedUserID: opts.AssignedUserID,
		CreatedByID:    opts.CreatedByID,
	}
	if err := db.Create(&task).Error; err != nil {
		return nil, fmt.Errorf("task: create: %w", err)
	}
	return &task, nil
}

// Get retrieves a task by id, preloading its client links.
func Get(db *gorm.DB, id uint) (*models.Task, error) {
	var task models.Task
	if err := db.Preload("ClientLinks").First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("task: not found: %d", id)
		}
		return nil, fmt.Errorf("task: get %d: %w", id, err)
	}
	return &task, nil
}

// List returns tasks matching the given filters, ordered by due date then id.
func List(db *gorm.DB, filters ListFilters) ([]models.Task, error) {
	q := db.Model(&models.Task{})
	if filters.ClientID != nil {
		q = q.Where("client_id = ?", *filters.ClientID)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.TaskType != "" {
		q = q.Where("task_type = ?", filters.TaskType)
	}
	if filters.Unassigned {
		q = q.Where("assigned_user_id IS NULL")
	}

	var tasks []models.Task
	if err := q.Order("due_date asc, id asc").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("task: list: %w", err)
	}
	return tasks, nil
}

// SetStatus transitions a task. Completion of an intercompany task is
// rejected with ErrLinksOutstanding while any link is unchecked; the check
// happens at the moment of the attempt, and checked-off links never complete
// the task by themselves. Completing an onboarding task triggers the
// client's release check through m (nil → default phase sets).
func SetStatus(db *gorm.DB, id uint, status string, m *onboarding.Materializer) (*models.Task, error) {
	if status == "" {
		return nil, fmt.Errorf("task: status is required")
	}

	t, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	if status == models.StatusCompleted && t.IsIntercompany {
		var outstanding int64
		if err := db.Model(&models.TaskClientLink{}).
			Where("task_id = ? AND is_completed = ?", id, false).
			Count(&outstanding).Error; err != nil {
			return nil, fmt.Errorf("task: check links for %d: %w", id, err)
		}
		if outstanding > 0 {
			return nil, fmt.Errorf("task %d: %d link(s) outstanding: %w", id, outstanding, ErrLinksOutstanding)
		}
	}

	updates := map[string]interface{}{"status": status}
	if status == models.StatusCompleted {
		now := time.Now().UTC()
		updates["completed_at"] = &now
	} else {
		updates["completed_at"] = nil
	}
	if err := db.Model(&models.Task{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("task: update %d: %w", id, err)
	}

	// Completing an admin-classified onboarding task may unblock the
	// client's remaining checklist.
	if status == models.StatusCompleted && t.TaskType == models.TypeOnboarding && t.ClientID != nil {
		if m == nil {
			m = onboarding.NewMaterializer(db, nil)
		}
		if _, err := m.ReleaseIfReady(*t.ClientID); err != nil {
			return nil, fmt.Errorf("task: release check for client %d: %w", *t.ClientID, err)
		}
	}

	return Get(db, id)
}
