package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthKeyIsZeroBased(t *testing.T) {
	cases := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC), "2024-0"},
		{time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC), "2024-2"},
		{time.Date(2024, time.December, 31, 23, 59, 0, 0, time.UTC), "2024-11"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MonthKey(tc.at))
	}
}

func TestPreviousMonthKey(t *testing.T) {
	assert.Equal(t, "2024-1", PreviousMonthKey(time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)))
	// January rolls back into the previous year
	assert.Equal(t, "2023-11", PreviousMonthKey(time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)))
}

func TestDayWindow(t *testing.T) {
	at := time.Date(2024, time.March, 1, 10, 30, 0, 0, time.UTC)
	start, end := DayWindow(at)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC), end)
}

func TestYesterdayWindowAcrossYearBoundary(t *testing.T) {
	at := time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC)
	start, end := YesterdayWindow(at)
	assert.Equal(t, time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestPeriodWindow(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	start, end, bounded := PeriodWindow(PeriodCurrentMonth, now)
	assert.True(t, bounded)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), end)

	start, end, bounded = PeriodWindow(PeriodPreviousMonth, now)
	assert.True(t, bounded)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), end)

	_, _, bounded = PeriodWindow(PeriodAllTime, now)
	assert.False(t, bounded)
}
