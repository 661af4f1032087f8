package models

import "time"

// SchedulerRun is an audit row for one scheduler invocation, kept for
// operational visibility on the dashboard and in run reports.
type SchedulerRun struct {
	ID             string    `gorm:"primaryKey;size:36"` // uuid
	RunDate        time.Time `gorm:"not null;index"`
	Created        int
	Advanced       int
	SkippedRunaway int
	StartedAt      time.Time
	FinishedAt     time.Time
}
