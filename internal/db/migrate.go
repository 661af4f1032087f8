package db

import (
	"fmt"

	"github.com/calloway/ledgerdesk/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Client{},
		&models.RecurringRule{},
		&models.OnboardingTemplate{},
		&models.Task{},
		&models.TaskClientLink{},
		&models.SchedulerRun{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// TemplateSeed describes one onboarding template row to seed.
type TemplateSeed struct {
	Name          string
	Phase         string
	Role          string
	DueOffsetDays *int
	OrderIndex    int
}

// DefaultTemplateSeeds returns the firm's standard onboarding checklist.
func DefaultTemplateSeeds() []TemplateSeed {
	days := func(d int) *int { return &d }
	return []TemplateSeed{
		{Name: "Sign engagement letter", Phase: "Engagement", Role: "admin", DueOffsetDays: days(3), OrderIndex: 1},
		{Name: "Set up billing", Phase: "Billing", Role: "admin", DueOffsetDays: days(5), OrderIndex: 2},
		{Name: "Collect contracts", Phase: "Contracts", DueOffsetDays: days(7), OrderIndex: 3},
		{Name: "QBO company setup", Phase: "QBO Setup", Role: "bookkeeper", DueOffsetDays: days(10), OrderIndex: 4},
		{Name: "Connect bank feeds", Phase: "Bank Feeds", Role: "bookkeeper", DueOffsetDays: days(14), OrderIndex: 5},
		{Name: "Chart of accounts review", Phase: "Chart of Accounts", DueOffsetDays: days(21), OrderIndex: 6},
		{Name: "First reconcile", Phase: "Reconcile", DueOffsetDays: days(30), OrderIndex: 7},
	}
}

// SeedTemplates upserts onboarding template rows by name.
func SeedTemplates(db *gorm.DB, seeds []TemplateSeed) error {
	for _, s := range seeds {
		tmpl := models.OnboardingTemplate{
			Name:                 s.Name,
			Phase:                s.Phase,
			DefaultAssignedRole:  s.Role,
			DefaultDueOffsetDays: s.DueOffsetDays,
			OrderIndex:           s.OrderIndex,
			Active:               true,
		}
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"phase", "default_assigned_role", "default_due_offset_days", "order_index", "active"}),
		}).Create(&tmpl)
		if result.Error != nil {
			return fmt.Errorf("db: seed template %q: %w", s.Name, result.Error)
		}
	}
	return nil
}
