// Package schedule computes calendar recurrence dates for recurring rules.
// All functions are pure; dates are UTC-midnight time.Time values.
package schedule

import (
	"strings"
	"time"
)

// Schedule type labels stored on RecurringRule.
const (
	Monthly   = "monthly"
	Quarterly = "quarterly"
	Annual    = "annual"

	// ClientFrequency is resolved to one of the three concrete types at
	// rule creation via ResolveScheduleType.
	ClientFrequency = "client_frequency"
)

// Anchor specifies where in a target month a due date lands. Either
// DayOfMonth is set, or Weekday+WeekOfMonth, or neither (fallback: the
// day-of-month of the date being advanced from).
type Anchor struct {
	DayOfMonth  *int // 1-31, clamped to the target month's length
	Weekday     *int // 0=Sunday .. 6=Saturday
	WeekOfMonth *int // 1..4, or -1 for last occurrence in month
}

// MonthStep returns how many months a schedule type advances per period.
// Unknown types behave as monthly.
func MonthStep(scheduleType string) int {
	switch strings.ToLower(strings.TrimSpace(scheduleType)) {
	case Quarterly:
		return 3
	case Annual:
		return 12
	default:
		return 1
	}
}

// ResolveScheduleType maps a client's bookkeeping frequency label to a
// concrete schedule type. Unknown labels resolve to monthly, matching the
// engine's unknown-schedule default.
func ResolveScheduleType(frequency string) string {
	switch strings.ToLower(strings.TrimSpace(frequency)) {
	case "quarterly":
		return Quarterly
	case "annual", "annually", "yearly":
		return Annual
	default:
		return Monthly
	}
}

// Advance returns the due date one period after from: it adds the schedule's
// month step to from's (year, month) and resolves the anchor within the
// target month. The result is always after from.
func Advance(scheduleType string, from time.Time, a Anchor) time.Time {
	year, month := addMonths(from, MonthStep(scheduleType))
	return resolveInMonth(year, month, a, from.Day())
}

// NextOnOrAfter returns the first anchor date on or after from. It is used
// to seed a brand-new rule's first due date: unlike Advance, it first tries
// from's own month, then steps forward a period at a time.
func NextOnOrAfter(scheduleType string, from time.Time, a Anchor) time.Time {
	from = DateOnly(from)
	year, month := from.Year(), from.Month()
	candidate := resolveInMonth(year, month, a, from.Day())

	step := MonthStep(scheduleType)
	// The month step is at least 1, so this always terminates; the bound
	// just keeps the function total against arithmetic surprises.
	for i := 0; candidate.Before(from) && i < 48; i++ {
		m := int(month) - 1 + step
		year += m / 12
		month = time.Month(m%12 + 1)
		candidate = resolveInMonth(year, month, a, from.Day())
	}
	return candidate
}

// LastDay returns the number of days in the given month.
func LastDay(year int, month time.Month) int {
	// Day 0 of the next month normalizes to this month's final day.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// addMonths returns the (year, month) that lies months after t's (year, month).
func addMonths(t time.Time, months int) (int, time.Month) {
	m := int(t.Month()) - 1 + months
	return t.Year() + m/12, time.Month(m%12 + 1)
}

// resolveInMonth places the anchor within (year, month). fallbackDay is used
// when the anchor sets neither mode.
func resolveInMonth(year int, month time.Month, a Anchor, fallbackDay int) time.Time {
	last := LastDay(year, month)

	// Day-of-month mode.
	if a.DayOfMonth != nil && *a.DayOfMonth > 0 {
		dom := *a.DayOfMonth
		if dom > 31 {
			dom = 31
		}
		if dom > last {
			dom = last
		}
		return time.Date(year, month, dom, 0, 0, 0, 0, time.UTC)
	}

	// Weekday-of-month mode.
	if a.Weekday != nil && a.WeekOfMonth != nil && *a.WeekOfMonth != 0 {
		wd := time.Weekday(*a.Weekday % 7)
		wom := *a.WeekOfMonth

		if wom > 0 {
			first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
			offset := (int(wd) - int(first.Weekday()) + 7) % 7
			day := 1 + offset + (wom-1)*7
			if day > last {
				// "5th Friday" and similar overflow: clamp to the last
				// occurrence in the intended month rather than drifting
				// into the next one.
				return lastOccurrence(year, month, wd)
			}
			return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		}
		return lastOccurrence(year, month, wd)
	}

	// Fallback: same day-of-month as the source date, clamped.
	day := fallbackDay
	if day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// lastOccurrence returns the final occurrence of wd within (year, month).
func lastOccurrence(year int, month time.Month, wd time.Weekday) time.Time {
	lastDate := time.Date(year, month, LastDay(year, month), 0, 0, 0, 0, time.UTC)
	back := (int(lastDate.Weekday()) - int(wd) + 7) % 7
	return lastDate.AddDate(0, 0, -back)
}

// DateOnly truncates t to a UTC calendar date. Rules and tasks compare and
// store due dates at day granularity.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
