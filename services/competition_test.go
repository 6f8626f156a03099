package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitcrew/gymtrack/models"
)

func TestSettlePreviousMonthAwardsTiedLeaders(t *testing.T) {
	db := testDB(t)
	svc := NewCompetitionService(db, NewRankingService(db), 50)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	febStart := time.Date(2024, time.February, 1, 9, 0, 0, 0, time.UTC)
	seedVisits(t, db, alice.ID, febStart, 3)
	seedVisits(t, db, bob.ID, febStart, 3)
	seedVisits(t, db, carol.ID, febStart, 1)

	result, err := svc.SettlePreviousMonth(now)
	require.NoError(t, err)
	assert.Equal(t, "2024-1", result.Month)
	assert.Equal(t, 3, result.MaxVisits)
	require.Len(t, result.Winners, 2)

	assert.Equal(t, 50, loadUser(t, db, alice.ID).Points)
	assert.Equal(t, 50, loadUser(t, db, bob.ID).Points)
	assert.Equal(t, 0, loadUser(t, db, carol.ID).Points)

	assert.Equal(t, 50, monthlyPointsFor(t, db, alice.ID, "2024-1"))
	assert.Equal(t, 50, monthlyPointsFor(t, db, bob.ID, "2024-1"))
	assert.Equal(t, 0, monthlyPointsFor(t, db, carol.ID, "2024-1"))

	var achievements []models.Achievement
	require.NoError(t, db.Where("type = ? AND month = ?", models.AchievementMonthlyWinner, "2024-1").
		Find(&achievements).Error)
	assert.Len(t, achievements, 2)
	for _, a := range achievements {
		assert.Equal(t, 50, a.BonusPoints)
		assert.True(t, a.AchievedAt.Equal(now))
	}
}

func TestSettlePreviousMonthIsIdempotent(t *testing.T) {
	db := testDB(t)
	svc := NewCompetitionService(db, NewRankingService(db), 50)

	alice := createUser(t, db, "alice")
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	addVisit(t, db, alice.ID, time.Date(2024, time.February, 10, 9, 0, 0, 0, time.UTC))

	_, err := svc.SettlePreviousMonth(now)
	require.NoError(t, err)

	_, err = svc.SettlePreviousMonth(now)
	require.ErrorIs(t, err, ErrAlreadySettled)

	// A retry must not double-award.
	assert.Equal(t, 50, loadUser(t, db, alice.ID).Points)
	assert.Equal(t, 50, monthlyPointsFor(t, db, alice.ID, "2024-1"))
}

func TestSettlePreviousMonthNoVisits(t *testing.T) {
	db := testDB(t)
	svc := NewCompetitionService(db, NewRankingService(db), 50)

	createUser(t, db, "alice")
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

	_, err := svc.SettlePreviousMonth(now)
	require.ErrorIs(t, err, ErrNothingToSettle)
}

func TestSettleAddsBonusOnTopOfVisitPoints(t *testing.T) {
	db := testDB(t)
	checkin := NewCheckInService(db, 10)
	svc := NewCompetitionService(db, NewRankingService(db), 50)

	alice := createUser(t, db, "alice")
	for d := 1; d <= 4; d++ {
		_, err := checkin.CheckIn(alice.ID, time.Date(2024, time.February, d, 9, 0, 0, 0, time.UTC))
		require.NoError(t, err)
	}

	_, err := svc.SettlePreviousMonth(time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// 4 visits x 10 points + 50 bonus, in both the lifetime total and the
	// February row.
	assert.Equal(t, 90, loadUser(t, db, alice.ID).Points)
	assert.Equal(t, 90, monthlyPointsFor(t, db, alice.ID, "2024-1"))
}
