package models

import "time"

// Task is a concrete piece of work for a client. Tasks are materialized from
// recurring rules or onboarding templates, or created ad hoc.
type Task struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Title       string `gorm:"not null"`
	Description string `gorm:"type:text"`
	Status      string `gorm:"size:32;default:new;index"`
	TaskType    string `gorm:"size:16;default:ad_hoc;index"`

	// (RecurringRuleID, DueDate) carries a store-level unique index: the
	// scheduler relies on it to stay idempotent under overlapping runs.
	DueDate        *time.Time `gorm:"uniqueIndex:uq_rule_due"`
	ClientID       *uint      `gorm:"index"`
	AssignedUserID *uint      `gorm:"index"`
	CreatedByID    *uint

	// Exactly one of these back-references is set for generated tasks,
	// neither for ad hoc ones.
	RecurringRuleID *uint `gorm:"uniqueIndex:uq_rule_due"`
	TemplateID      *uint `gorm:"index"`

	OnboardingPhase string `gorm:"size:64"`
	IsIntercompany  bool   `gorm:"default:false"`

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time

	Client        *Client          `gorm:"foreignKey:ClientID"`
	AssignedUser  *User            `gorm:"foreignKey:AssignedUserID"`
	RecurringRule *RecurringRule   `gorm:"foreignKey:RecurringRuleID"`
	Template      *OnboardingTemplate `gorm:"foreignKey:TemplateID"`
	ClientLinks   []TaskClientLink `gorm:"foreignKey:TaskID"`
}

// TaskClientLink records one linked client's sign-off on an intercompany task.
// A task may not complete while any of its links is unchecked.
type TaskClientLink struct {
	TaskID        uint `gorm:"primaryKey"`
	ClientID      uint `gorm:"primaryKey"`
	IsCompleted   bool `gorm:"default:false"`
	CompletedAt   *time.Time
	CompletedByID *uint
	CreatedAt     time.Time

	Task   Task   `gorm:"foreignKey:TaskID"`
	Client Client `gorm:"foreignKey:ClientID"`
}
