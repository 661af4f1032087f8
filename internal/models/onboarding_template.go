package models

import "time"

// OnboardingTemplate is one step in the firm's client onboarding checklist.
// Active templates are materialized into Tasks when a client is onboarded.
type OnboardingTemplate struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"not null;uniqueIndex"`
	Description string `gorm:"type:text"`

	// Phase groups templates on the onboarding tab, e.g. "Admin Setup" or
	// "Bank Feeds". Some phases classify as admin work and gate the rest.
	Phase string `gorm:"size:64"`

	// Days after the client's creation date to set the due date. Nil leaves
	// the generated task undated.
	DefaultDueOffsetDays *int

	// bookkeeper, manager, admin, or empty for phase-based resolution.
	DefaultAssignedRole string `gorm:"size:16"`

	OrderIndex int  `gorm:"default:0"`
	Active     bool `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
