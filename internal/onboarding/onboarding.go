// Package onboarding materializes a client's onboarding checklist from
// templates and gates non-admin steps behind completion of the admin set.
package onboarding

import (
	"fmt"
	"time"

	"github.com/calloway/ledgerdesk/internal/assign"
	"github.com/calloway/ledgerdesk/internal/models"
	"gorm.io/gorm"
)

// Materializer creates onboarding tasks for clients.
type Materializer struct {
	DB       *gorm.DB
	Resolver *assign.Resolver
}

// NewMaterializer builds a Materializer; a nil resolver gets the default
// phase sets.
func NewMaterializer(db *gorm.DB, resolver *assign.Resolver) *Materializer {
	if resolver == nil {
		resolver = assign.NewResolver(db, assign.PhaseSets{})
	}
	return &Materializer{DB: db, Resolver: resolver}
}

// adminClassified reports whether a template's task gates the rest of the
// checklist: explicit admin role, or a phase in the admin set.
func (m *Materializer) adminClassified(tmpl *models.OnboardingTemplate) bool {
	if assign.ParseRole(tmpl.DefaultAssignedRole) == assign.RoleAdmin {
		return true
	}
	return m.Resolver.Phases.Classify(tmpl.Phase) == assign.PhaseAdmin
}

// Materialize creates onboarding tasks for the client from active templates,
// ordered by order_index then id. It is idempotent per (client, template):
// templates already represented are skipped, so intake conversion and a
// later backfill can both call it safely. Admin-classified templates start
// active; everything else starts blocked until the admin set completes.
func (m *Materializer) Materialize(client *models.Client, creatorID *uint) ([]models.Task, error) {
	var templates []models.OnboardingTemplate
	if err := m.DB.
		Where("active = ?", true).
		Order("order_index asc, id asc").
		Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("onboarding: load templates: %w", err)
	}
	if len(templates) == 0 {
		return nil, nil
	}

	// Templates this client already has tasks for.
	var existingIDs []uint
	if err := m.DB.Model(&models.Task{}).
		Where("client_id = ? AND task_type = ? AND template_id IS NOT NULL", client.ID, models.TypeOnboarding).
		Pluck("template_id", &existingIDs).Error; err != nil {
		return nil, fmt.Errorf("onboarding: check existing tasks: %w", err)
	}
	existing := make(map[uint]bool, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = true
	}

	baseDate := client.CreatedAt
	if baseDate.IsZero() {
		baseDate = time.Now().UTC()
	}

	var created []models.Task
	err := m.DB.Transaction(func(tx *gorm.DB) error {
		for i := range templates {
			tmpl := &templates[i]
			if existing[tmpl.ID] {
				continue
			}

			assignee, err := m.Resolver.Resolve(
				assign.ParseRole(tmpl.DefaultAssignedRole), tmpl.Phase, client, creatorID)
			if err != nil {
				return fmt.Errorf("resolve assignee for template %d: %w", tmpl.ID, err)
			}

			status := models.StatusBlocked
			if m.adminClassified(tmpl) {
				status = models.StatusNew
			}

			var due *time.Time
			if tmpl.DefaultDueOffsetDays != nil {
				d := baseDate.AddDate(0, 0, *tmpl.DefaultDueOffsetDays)
				due = &d
			}

			tmplID := tmpl.ID
			cid := client.ID
			task := models.Task{
				Title:           tmpl.Name,
				Description:     tmpl.Description,
				Status:          status,
				TaskType:        models.TypeOnboarding,
				DueDate:         due,
				ClientID:        &cid,
				AssignedUserID:  assignee,
				CreatedByID:     creatorID,
				TemplateID:      &tmplID,
				OnboardingPhase: tmpl.Phase,
			}
			if err := tx.Create(&task).Error; err != nil {
				return fmt.Errorf("create task for template %d: %w", tmpl.ID, err)
			}
			created = append(created, task)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("onboarding: materialize client %d: %w", client.ID, err)
	}
	return created, nil
}

// ReleaseIfReady releases the client's blocked onboarding tasks once every
// admin-classified onboarding task is completed (an empty admin set counts
// as satisfied). Blocked tasks without an assignee get one resolved lazily
// before release. The whole read-check-release pass runs in one transaction
// and is a no-op when the condition is unmet or nothing is blocked, so
// redundant calls from concurrent status updates are safe.
func (m *Materializer) ReleaseIfReady(clientID uint) (int, error) {
	released := 0
	err := m.DB.Transaction(func(tx *gorm.DB) error {
		tasks, err := m.onboardingTasks(tx, clientID)
		if err != nil {
			return err
		}

		for i := range tasks {
			task := &tasks[i]
			if task.Template == nil || !m.adminClassified(task.Template) {
				continue
			}
			if task.Status != models.StatusCompleted {
				// Admin set incomplete: nothing to release yet.
				return nil
			}
		}

		var client models.Client
		clientLoaded := false

		for i := range tasks {
			task := &tasks[i]
			if task.Status != models.StatusBlocked {
				continue
			}

			if task.AssignedUserID == nil && task.Template != nil {
				if !clientLoaded {
					if err := tx.First(&client, clientID).Error; err != nil {
						return fmt.Errorf("load client: %w", err)
					}
					clientLoaded = true
				}
				assignee, err := m.Resolver.Resolve(
					assign.ParseRole(task.Template.DefaultAssignedRole),
					task.Template.Phase, &client, task.CreatedByID)
				if err != nil {
					return fmt.Errorf("resolve assignee for task %d: %w", task.ID, err)
				}
				task.AssignedUserID = assignee
			}

			updates := map[string]interface{}{
				"status":           models.StatusNew,
				"assigned_user_id": task.AssignedUserID,
			}
			if err := tx.Model(&models.Task{}).Where("id = ?", task.ID).Updates(updates).Error; err != nil {
				return fmt.Errorf("release task %d: %w", task.ID, err)
			}
			released++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("onboarding: release client %d: %w", clientID, err)
	}
	return released, nil
}

// onboardingTasks loads a client's template-derived onboarding tasks with
// their templates.
func (m *Materializer) onboardingTasks(tx *gorm.DB, clientID uint) ([]models.Task, error) {
	var tasks []models.Task
	if err := tx.Preload("Template").
		Where("client_id = ? AND task_type = ? AND template_id IS NOT NULL", clientID, models.TypeOnboarding).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("load onboarding tasks: %w", err)
	}
	return tasks, nil
}
