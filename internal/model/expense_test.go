package model

import (
	"testing"
	"time"
)

func date(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestScheduleIncludes(t *testing.T) {
	start := time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name        string
		periodicity string
		month       time.Time
		want        bool
	}{
		{"monthly covers start month", PeriodicityMonthly, date(2026, time.February), true},
		{"monthly covers later months", PeriodicityMonthly, date(2026, time.July), true},
		{"monthly excludes months before start", PeriodicityMonthly, date(2026, time.January), false},
		{"quarterly covers start month", PeriodicityQuarterly, date(2026, time.February), true},
		{"quarterly covers +3", PeriodicityQuarterly, date(2026, time.May), true},
		{"quarterly skips +1", PeriodicityQuarterly, date(2026, time.March), false},
		{"quarterly crosses years", PeriodicityQuarterly, date(2027, time.February), true},
		{"annual covers +12", PeriodicityAnnual, date(2027, time.February), true},
		{"annual skips +6", PeriodicityAnnual, date(2026, time.August), false},
		{"one-time never recurs", PeriodicityOneTime, date(2026, time.February), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := &Expense{Periodicity: tc.periodicity, StartDate: start}
			if got := e.ScheduleIncludes(tc.month); got != tc.want {
				t.Errorf("ScheduleIncludes(%s) = %v, want %v", tc.month.Format("2006-01"), got, tc.want)
			}
		})
	}
}

func TestMonthStart(t *testing.T) {
	in := time.Date(2026, time.August, 28, 13, 45, 0, 0, time.FixedZone("X", 3600))
	got := MonthStart(in)
	want := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("MonthStart = %v, want %v", got, want)
	}
}
