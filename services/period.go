package services

import (
	"fmt"
	"time"
)

// Period selects the time window a ranking is computed over.
type Period int

const (
	PeriodCurrentMonth Period = iota
	PeriodPreviousMonth
	PeriodAllTime
)

// MonthKey returns the legacy month grouping key "{year}-{zeroBasedMonthIndex}",
// e.g. "2024-0" for January 2024. Stored data depends on this exact format.
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%d-%d", t.Year(), int(t.Month())-1)
}

// PreviousMonthKey returns the month key for the month before t's.
func PreviousMonthKey(t time.Time) string {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return MonthKey(firstOfMonth.AddDate(0, 0, -1))
}

// DayStart truncates t to local midnight.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayWindow returns the half-open [start, end) bounds of t's calendar day.
func DayWindow(t time.Time) (start, end time.Time) {
	start = DayStart(t)
	return start, start.AddDate(0, 0, 1)
}

// YesterdayWindow returns the half-open bounds of the calendar day before t's.
func YesterdayWindow(t time.Time) (start, end time.Time) {
	end = DayStart(t)
	return end.AddDate(0, 0, -1), end
}

// MonthWindow returns the half-open bounds of t's calendar month.
func MonthWindow(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}

// PeriodWindow resolves a ranking period to concrete bounds relative to now.
// The all-time period is unbounded and reports bounded=false.
func PeriodWindow(p Period, now time.Time) (start, end time.Time, bounded bool) {
	switch p {
	case PeriodCurrentMonth:
		start, end = MonthWindow(now)
		return start, end, true
	case PeriodPreviousMonth:
		firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		start, end = MonthWindow(firstOfMonth.AddDate(0, 0, -1))
		return start, end, true
	default:
		return time.Time{}, time.Time{}, false
	}
}
