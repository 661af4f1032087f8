package models

import "time"

// RecurringRule is a standing obligation definition. The scheduler
// materializes one Task per due date and moves NextRun forward.
type RecurringRule struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"not null"`
	Description string `gorm:"type:text"`

	// monthly, quarterly or annual. Rules entered as client_frequency are
	// resolved to one of the three at creation time.
	ScheduleType string `gorm:"size:16;not null"`

	// Anchor: either DayOfMonth, or Weekday+WeekOfMonth, or neither
	// (fallback: same day-of-month as the date being advanced from).
	DayOfMonth  *int // 1-31, clamped to actual month length
	Weekday     *int // 0=Sunday .. 6=Saturday
	WeekOfMonth *int // 1..4, or -1 for last occurrence in month

	// NextRun is the next due date not yet materialized. Unset rules are
	// skipped by the scheduler.
	NextRun *time.Time `gorm:"index"`

	ClientID       *uint  `gorm:"index"`
	AssignedUserID *uint
	DefaultStatus  string `gorm:"size:32;default:new"`
	Active         bool   `gorm:"default:true;index"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Client       *Client `gorm:"foreignKey:ClientID"`
	AssignedUser *User   `gorm:"foreignKey:AssignedUserID"`
}
