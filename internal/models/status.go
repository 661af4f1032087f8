package models

// Task statuses. Blocked is reserved for the onboarding gate; the gate
// filters its blocked set by status and task type so the label cannot
// double-release unrelated work.
const (
	StatusNew             = "new"
	StatusBlocked         = "blocked"
	StatusInProgress      = "in_progress"
	StatusWaitingOnClient = "waiting_on_client"
	StatusCompleted       = "completed"
)

// Task types.
const (
	TypeRecurring  = "recurring"
	TypeOnboarding = "onboarding"
	TypeProject    = "project"
	TypeAdHoc      = "ad_hoc"
)
