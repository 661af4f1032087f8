package task

import (
	"errors"
	"fmt"
	"time"

	"github.com/calloway/ledgerdesk/internal/models"
	"gorm.io/gorm"
)

// ErrTooFewClients signals an intercompany creation attempt with fewer than
// two distinct linked clients.
var ErrTooFewClients = errors.New("task: an intercompany task needs at least 2 distinct clients")

// CreateIntercompany creates a task anchored to the first client and linked
// to every client in clientIDs, atomically. Each linked client signs off
// independently via SetLinkCompletion before the task itself may complete.
func CreateIntercompany(db *gorm.DB, opts CreateOpts, clientIDs []uint) (*models.Task, error) {
	distinct := make([]uint, 0, len(clientIDs))
	seen := make(map[uint]bool, len(clientIDs))
	for _, id := range clientIDs {
		if !seen[id] {
			seen[id] = true
			distinct = append(distinct, id)
		}
	}
	if len(distinct) < 2 {
		return nil, ErrTooFewClients
	}
	if opts.Title == "" {
		return nil, fmt.Errorf("task: title is required")
	}
	if opts.Status == "" {
		opts.Status = models.StatusNew
	}
	if opts.TaskType == "" {
		opts.TaskType = models.TypeProject
	}
	if opts.ClientID == nil {
		opts.ClientID = &distinct[0]
	}

	var task models.Task
	err := db.Transaction(func(tx *gorm.DB) error {
		task = models.Task{
			Title:          opts.Title,
			Description:    opts.Description,
			Status:         opts.Status,
			TaskType:       opts.TaskType,
			DueDate:        opts.DueDate,
			ClientID:       opts.ClientID,
			AssignedUserID: opts.AssignedUserID,
			CreatedByID:    opts.CreatedByID,
			IsIntercompany: true,
		}
		if err := tx.Create(&task).Error; err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		for _, cid := range distinct {
			link := models.TaskClientLink{TaskID: task.ID, ClientID: cid}
			if err := tx.Create(&link).Error; err != nil {
				return fmt.Errorf("link client %d: %w", cid, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("task: create intercompany: %w", err)
	}
	return Get(db, task.ID)
}

// SetLinkCompletion marks one linked client's sign-off on an intercompany
// task. Completing stamps completed_at and completed_by; unsetting clears
// both. The parent task's status is never touched here — even a fully
// checked-off task stays in its prior status until someone completes it
// explicitly.
func SetLinkCompletion(db *gorm.DB, taskID, clientID uint, completed bool, userID *uint) (*models.TaskClientLink, error) {
	var link models.TaskClientLink
	if err := db.Where("task_id = ? AND client_id = ?", taskID, clientID).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("task: no link for task %d, client %d", taskID, clientID)
		}
		return nil, fmt.Errorf("task: load link: %w", err)
	}

	updates := map[string]interface{}{
		"is_completed":    completed,
		"completed_at":    nil,
		"completed_by_id": nil,
	}
	if completed {
		now := time.Now().UTC()
		updates["completed_at"] = &now
		updates["completed_by_id"] = userID
	}
	if err := db.Model(&models.TaskClientLink{}).
		Where("task_id = ? AND client_id = ?", taskID, clientID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("task: update link: %w", err)
	}

	if err := db.Where("task_id = ? AND client_id = ?", taskID, clientID).First(&link).Error; err != nil {
		return nil, fmt.Errorf("task: reload link: %w", err)
	}
	return &link, nil
}

// LinkProgress returns how many links exist and how many are checked off.
func LinkProgress(db *gorm.DB, taskID uint) (total, completed int64, err error) {
	if err := db.Model(&models.TaskClientLink{}).Where("task_id = ?", taskID).Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("task: count links: %w", err)
	}
	if err := db.Model(&models.TaskClientLink{}).
		Where("task_id = ? AND is_completed = ?", taskID, true).
		Count(&completed).Error; err != nil {
		return 0, 0, fmt.Errorf("task: count completed links: %w", err)
	}
	return total, completed, nil
}
