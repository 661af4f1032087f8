package schedule

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intp(v int) *int { return &v }

func TestMonthStep(t *testing.T) {
	tests := []struct {
		scheduleType string
		want         int
	}{
		{"monthly", 1},
		{"quarterly", 3},
		{"annual", 12},
		{"  Quarterly ", 3},
		{"", 1},
		{"bogus", 1},
	}
	for _, tt := range tests {
		if got := MonthStep(tt.scheduleType); got != tt.want {
			t.Errorf("MonthStep(%q) = %d, want %d", tt.scheduleType, got, tt.want)
		}
	}
}

func TestResolveScheduleType(t *testing.T) {
	tests := []struct {
		frequency string
		want      string
	}{
		{"monthly", Monthly},
		{"quarterly", Quarterly},
		{"annually", Annual},
		{"annual", Annual},
		{"yearly", Annual},
		{"Quarterly", Quarterly},
		{"", Monthly},
		{"weird", Monthly},
	}
	for _, tt := range tests {
		if got := ResolveScheduleType(tt.frequency); got != tt.want {
			t.Errorf("ResolveScheduleType(%q) = %q, want %q", tt.frequency, got, tt.want)
		}
	}
}

func TestAdvance_DayOfMonth(t *testing.T) {
	tests := []struct {
		name         string
		scheduleType string
		from         time.Time
		anchor       Anchor
		want         time.Time
	}{
		{
			name:         "monthly simple",
			scheduleType: Monthly,
			from:         date(2025, time.March, 15),
			anchor:       Anchor{DayOfMonth: intp(15)},
			want:         date(2025, time.April, 15),
		},
		{
			name:         "31st clamps to April 30th",
			scheduleType: Monthly,
			from:         date(2025, time.March, 31),
			anchor:       Anchor{DayOfMonth: intp(31)},
			want:         date(2025, time.April, 30),
		},
		{
			name:         "31st clamps to Feb 28th",
			scheduleType: Monthly,
			from:         date(2025, time.January, 31),
			anchor:       Anchor{DayOfMonth: intp(31)},
			want:         date(2025, time.February, 28),
		},
		{
			name:         "31st clamps to Feb 29th in leap year",
			scheduleType: Monthly,
			from:         date(2024, time.January, 31),
			anchor:       Anchor{DayOfMonth: intp(31)},
			want:         date(2024, time.February, 29),
		},
		{
			name:         "December rolls into January",
			scheduleType: Monthly,
			from:         date(2025, time.December, 10),
			anchor:       Anchor{DayOfMonth: intp(10)},
			want:         date(2026, time.January, 10),
		},
		{
			name:         "quarterly steps three months",
			scheduleType: Quarterly,
			from:         date(2025, time.November, 5),
			anchor:       Anchor{DayOfMonth: intp(5)},
			want:         date(2026, time.February, 5),
		},
		{
			name:         "annual steps a full year",
			scheduleType: Annual,
			from:         date(2024, time.February, 29),
			anchor:       Anchor{DayOfMonth: intp(29)},
			want:         date(2025, time.February, 28),
		},
		{
			name:         "unknown schedule behaves as monthly",
			scheduleType: "whenever",
			from:         date(2025, time.June, 1),
			anchor:       Anchor{DayOfMonth: intp(1)},
			want:         date(2025, time.July, 1),
		},
		{
			name:         "oversized day clamps to 31",
			scheduleType: Monthly,
			from:         date(2025, time.June, 15),
			anchor:       Anchor{DayOfMonth: intp(99)},
			want:         date(2025, time.July, 31),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Advance(tt.scheduleType, tt.from, tt.anchor)
			if !got.Equal(tt.want) {
				t.Errorf("Advance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdvance_WeekdayOfMonth(t *testing.T) {
	friday := intp(int(time.Friday))
	tuesday := intp(int(time.Tuesday))

	tests := []struct {
		name         string
		from         time.Time
		anchor       Anchor
		want         time.Time
	}{
		{
			// April 2025: Tuesdays fall on 1, 8, 15, 22, 29.
			name:   "second Tuesday",
			from:   date(2025, time.March, 11),
			anchor: Anchor{Weekday: tuesday, WeekOfMonth: intp(2)},
			want:   date(2025, time.April, 8),
		},
		{
			// May 2025: Fridays fall on 2, 9, 16, 23, 30.
			name:   "last Friday via -1",
			from:   date(2025, time.April, 25),
			anchor: Anchor{Weekday: friday, WeekOfMonth: intp(-1)},
			want:   date(2025, time.May, 30),
		},
		{
			// June 2025 has only four Fridays (6, 13, 20, 27); a naive
			// "5th Friday" would land on July 4th.
			name:   "fifth Friday overflow clamps to last occurrence",
			from:   date(2025, time.May, 30),
			anchor: Anchor{Weekday: friday, WeekOfMonth: intp(5)},
			want:   date(2025, time.June, 27),
		},
		{
			// August 2025 has five Fridays: 1, 8, 15, 22, 29.
			name:   "fifth Friday exists",
			from:   date(2025, time.July, 25),
			anchor: Anchor{Weekday: friday, WeekOfMonth: intp(5)},
			want:   date(2025, time.August, 29),
		},
		{
			// January 2026: first Friday is the 2nd.
			name:   "year rollover with weekday anchor",
			from:   date(2025, time.December, 5),
			anchor: Anchor{Weekday: friday, WeekOfMonth: intp(1)},
			want:   date(2026, time.January, 2),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Advance(Monthly, tt.from, tt.anchor)
			if !got.Equal(tt.want) {
				t.Errorf("Advance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdvance_NoAnchorFallsBackToSameDay(t *testing.T) {
	got := Advance(Monthly, date(2025, time.January, 30), Anchor{})
	want := date(2025, time.February, 28)
	if !got.Equal(want) {
		t.Errorf("Advance() = %v, want %v", got, want)
	}

	got = Advance(Monthly, date(2025, time.April, 12), Anchor{})
	want = date(2025, time.May, 12)
	if !got.Equal(want) {
		t.Errorf("Advance() = %v, want %v", got, want)
	}
}

// Advance must be strictly increasing for every valid input.
func TestAdvance_AlwaysAfterFrom(t *testing.T) {
	anchors := []Anchor{
		{},
		{DayOfMonth: intp(1)},
		{DayOfMonth: intp(31)},
		{Weekday: intp(0), WeekOfMonth: intp(1)},
		{Weekday: intp(5), WeekOfMonth: intp(5)},
		{Weekday: intp(6), WeekOfMonth: intp(-1)},
	}
	schedules := []string{Monthly, Quarterly, Annual}

	from := date(2024, time.January, 1)
	for i := 0; i < 500; i++ {
		d := from.AddDate(0, 0, i*7)
		for _, st := range schedules {
			for _, a := range anchors {
				got := Advance(st, d, a)
				if !got.After(d) {
					t.Fatalf("Advance(%s, %v, %+v) = %v, not after from", st, d, a, got)
				}
			}
		}
	}
}

func TestNextOnOrAfter(t *testing.T) {
	friday := intp(int(time.Friday))

	tests := []struct {
		name         string
		scheduleType string
		from         time.Time
		anchor       Anchor
		want         time.Time
	}{
		{
			name:         "anchor later in same month",
			scheduleType: Monthly,
			from:         date(2025, time.June, 3),
			anchor:       Anchor{DayOfMonth: intp(15)},
			want:         date(2025, time.June, 15),
		},
		{
			name:         "anchor on from itself",
			scheduleType: Monthly,
			from:         date(2025, time.June, 15),
			anchor:       Anchor{DayOfMonth: intp(15)},
			want:         date(2025, time.June, 15),
		},
		{
			name:         "anchor already passed steps one month",
			scheduleType: Monthly,
			from:         date(2025, time.June, 20),
			anchor:       Anchor{DayOfMonth: intp(15)},
			want:         date(2025, time.July, 15),
		},
		{
			name:         "quarterly steps by three",
			scheduleType: Quarterly,
			from:         date(2025, time.June, 20),
			anchor:       Anchor{DayOfMonth: intp(15)},
			want:         date(2025, time.September, 15),
		},
		{
			// June 2025: last Friday is the 27th.
			name:         "weekday anchor in own month",
			scheduleType: Monthly,
			from:         date(2025, time.June, 10),
			anchor:       Anchor{Weekday: friday, WeekOfMonth: intp(-1)},
			want:         date(2025, time.June, 27),
		},
		{
			name:         "annual rollover",
			scheduleType: Annual,
			from:         date(2025, time.December, 31),
			anchor:       Anchor{DayOfMonth: intp(15)},
			want:         date(2026, time.December, 15),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOnOrAfter(tt.scheduleType, tt.from, tt.anchor)
			if !got.Equal(tt.want) {
				t.Errorf("NextOnOrAfter() = %v, want %v", got, tt.want)
			}
			if got.Before(tt.from) {
				t.Errorf("NextOnOrAfter() = %v is before from %v", got, tt.from)
			}
		})
	}
}

func TestNextOnOrAfter_NeverBeforeFrom(t *testing.T) {
	anchors := []Anchor{
		{},
		{DayOfMonth: intp(1)},
		{DayOfMonth: intp(28)},
		{Weekday: intp(3), WeekOfMonth: intp(4)},
		{Weekday: intp(1), WeekOfMonth: intp(-1)},
	}
	from := date(2023, time.November, 1)
	for i := 0; i < 400; i++ {
		d := from.AddDate(0, 0, i*3)
		for _, a := range anchors {
			for _, st := range []string{Monthly, Quarterly, Annual} {
				got := NextOnOrAfter(st, d, a)
				if got.Before(d) {
					t.Fatalf("NextOnOrAfter(%s, %v, %+v) = %v, before from", st, d, a, got)
				}
			}
		}
	}
}

func TestLastDay(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2025, time.January, 31},
		{2025, time.February, 28},
		{2024, time.February, 29},
		{2100, time.February, 28}, // century non-leap
		{2000, time.February, 29}, // 400-year leap
		{2025, time.April, 30},
		{2025, time.December, 31},
	}
	for _, tt := range tests {
		if got := LastDay(tt.year, tt.month); got != tt.want {
			t.Errorf("LastDay(%d, %v) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}
