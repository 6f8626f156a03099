package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitcrew/gymtrack/models"
)

func TestCheckInFirstVisit(t *testing.T) {
	db := testDB(t)
	svc := NewCheckInService(db, 10)
	user := createUser(t, db, "alice")

	now := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	res, err := svc.CheckIn(user.ID, now)
	require.NoError(t, err)

	assert.Equal(t, 1, res.User.Streak)
	assert.Equal(t, 10, res.User.Points)
	require.NotNil(t, res.User.LastVisitAt)
	assert.True(t, res.User.LastVisitAt.Equal(now))
	assert.Equal(t, 10, monthlyPointsFor(t, db, user.ID, "2024-2"))
}

func TestCheckInConsecutiveDays(t *testing.T) {
	db := testDB(t)
	svc := NewCheckInService(db, 10)
	user := createUser(t, db, "alice")

	start := time.Date(2024, time.March, 1, 7, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := svc.CheckIn(user.ID, start.AddDate(0, 0, i))
		require.NoError(t, err)
	}

	got := loadUser(t, db, user.ID)
	assert.Equal(t, 5, got.Streak)
	assert.Equal(t, 50, got.Points)
}

func TestCheckInGapResetsStreak(t *testing.T) {
	db := testDB(t)
	svc := NewCheckInService(db, 10)
	user := createUser(t, db, "alice")

	day1 := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	_, err := svc.CheckIn(user.ID, day1)
	require.NoError(t, err)

	// Skip day 2, check in on day 3: the chain is broken.
	res, err := svc.CheckIn(user.ID, day1.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, 1, res.User.Streak)
	assert.Equal(t, 20, res.User.Points)
}

func TestCheckInSameDayRejected(t *testing.T) {
	db := testDB(t)
	svc := NewCheckInService(db, 10)
	user := createUser(t, db, "alice")

	now := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)
	_, err := svc.CheckIn(user.ID, now)
	require.NoError(t, err)

	_, err = svc.CheckIn(user.ID, now.Add(4*time.Hour))
	require.ErrorIs(t, err, ErrAlreadyCheckedIn)

	// Nothing may have changed.
	got := loadUser(t, db, user.ID)
	assert.Equal(t, 1, got.Streak)
	assert.Equal(t, 10, got.Points)

	var visits int64
	require.NoError(t, db.Model(&models.Visit{}).Where("user_id = ?", user.ID).Count(&visits).Error)
	assert.EqualValues(t, 1, visits)
	assert.Equal(t, 10, monthlyPointsFor(t, db, user.ID, "2024-2"))
}

func TestCheckInScenarioMarch(t *testing.T) {
	db := testDB(t)
	svc := NewCheckInService(db, 10)
	user := createUser(t, db, "alice")

	day := func(d int) time.Time {
		return time.Date(2024, time.March, d, 10, 0, 0, 0, time.UTC)
	}

	res, err := svc.CheckIn(user.ID, day(1))
	require.NoError(t, err)
	assert.Equal(t, 1, res.User.Streak)
	assert.Equal(t, 10, res.User.Points)
	assert.Equal(t, 10, monthlyPointsFor(t, db, user.ID, "2024-2"))

	res, err = svc.CheckIn(user.ID, day(2))
	require.NoError(t, err)
	assert.Equal(t, 2, res.User.Streak)
	assert.Equal(t, 20, res.User.Points)
	assert.Equal(t, 20, monthlyPointsFor(t, db, user.ID, "2024-2"))

	// March 3rd skipped; the 4th restarts the streak but keeps accruing points.
	res, err = svc.CheckIn(user.ID, day(4))
	require.NoError(t, err)
	assert.Equal(t, 1, res.User.Streak)
	assert.Equal(t, 30, res.User.Points)
	assert.Equal(t, 30, monthlyPointsFor(t, db, user.ID, "2024-2"))
}

func TestCheckInMonthRollover(t *testing.T) {
	db := testDB(t)
	svc := NewCheckInService(db, 10)
	user := createUser(t, db, "alice")

	_, err := svc.CheckIn(user.ID, time.Date(2024, time.March, 31, 20, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	res, err := svc.CheckIn(user.ID, time.Date(2024, time.April, 1, 7, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// Streak spans the month boundary, points do not.
	assert.Equal(t, 2, res.User.Streak)
	assert.Equal(t, 10, monthlyPointsFor(t, db, user.ID, "2024-2"))
	assert.Equal(t, 10, monthlyPointsFor(t, db, user.ID, "2024-3"))
}

func TestStatus(t *testing.T) {
	db := testDB(t)
	svc := NewCheckInService(db, 10)
	user := createUser(t, db, "alice")

	now := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)

	status, err := svc.Status(user.ID, now)
	require.NoError(t, err)
	assert.False(t, status.CheckedInToday)
	assert.Equal(t, 0, status.Streak)

	_, err = svc.CheckIn(user.ID, now)
	require.NoError(t, err)

	status, err = svc.Status(user.ID, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, status.CheckedInToday)
	assert.Equal(t, 1, status.Streak)
	assert.Equal(t, 10, status.Points)

	// Next day before checking in
	status, err = svc.Status(user.ID, now.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.False(t, status.CheckedInToday)
}
