package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/gorm"

	"github.com/fitcrew/gymtrack/models"
)

func seedVisits(t *testing.T, db *gorm.DB, userID uint, from time.Time, days int) {
	t.Helper()
	for i := 0; i < days; i++ {
		addVisit(t, db, userID, from.AddDate(0, 0, i))
	}
}

func TestRankingSortsByVisitsDescending(t *testing.T) {
	db := testDB(t)
	svc := NewRankingService(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	now := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)
	monthStart := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	seedVisits(t, db, alice.ID, monthStart, 5)
	seedVisits(t, db, bob.ID, monthStart, 5)
	seedVisits(t, db, carol.ID, monthStart, 3)

	ranking, err := svc.Ranking(PeriodCurrentMonth, now)
	require.NoError(t, err)
	require.Len(t, ranking, 3)

	// carol sorts strictly after the tied pair; alice keeps her fetch-order
	// position ahead of bob (stable sort over ascending ids).
	assert.Equal(t, alice.ID, ranking[0].ID)
	assert.Equal(t, bob.ID, ranking[1].ID)
	assert.Equal(t, carol.ID, ranking[2].ID)
	assert.Equal(t, 5, ranking[0].Visits)
	assert.Equal(t, 5, ranking[1].Visits)
	assert.Equal(t, 3, ranking[2].Visits)
}

func TestRankingCurrentMonthIgnoresOtherMonths(t *testing.T) {
	db := testDB(t)
	svc := NewRankingService(db)

	alice := createUser(t, db, "alice")
	now := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)

	addVisit(t, db, alice.ID, time.Date(2024, time.February, 10, 9, 0, 0, 0, time.UTC))
	addVisit(t, db, alice.ID, time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC))

	ranking, err := svc.Ranking(PeriodCurrentMonth, now)
	require.NoError(t, err)
	require.Len(t, ranking, 1)
	assert.Equal(t, 1, ranking[0].Visits)
}

func TestRankingPreviousMonthOmitsCounters(t *testing.T) {
	db := testDB(t)
	svc := NewRankingService(db)

	alice := createUser(t, db, "alice")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", alice.ID).
		Updates(map[string]interface{}{"points": 120, "streak": 4}).Error)

	now := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)
	addVisit(t, db, alice.ID, time.Date(2024, time.February, 5, 9, 0, 0, 0, time.UTC))

	ranking, err := svc.Ranking(PeriodPreviousMonth, now)
	require.NoError(t, err)
	require.Len(t, ranking, 1)
	assert.Equal(t, 1, ranking[0].Visits)
	// The previous-month board only ever carried visit counts.
	assert.Zero(t, ranking[0].Streak)
	assert.Zero(t, ranking[0].Points)
}

func TestRankingAllTimeCountsEverything(t *testing.T) {
	db := testDB(t)
	svc := NewRankingService(db)

	alice := createUser(t, db, "alice")
	addVisit(t, db, alice.ID, time.Date(2023, time.June, 1, 9, 0, 0, 0, time.UTC))
	addVisit(t, db, alice.ID, time.Date(2024, time.February, 1, 9, 0, 0, 0, time.UTC))
	addVisit(t, db, alice.ID, time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC))

	ranking, err := svc.Ranking(PeriodAllTime, time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, ranking, 1)
	assert.Equal(t, 3, ranking[0].Visits)
}

func TestRankingEmpty(t *testing.T) {
	db := testDB(t)
	svc := NewRankingService(db)

	ranking, err := svc.Ranking(PeriodCurrentMonth, time.Now())
	require.NoError(t, err)
	assert.Empty(t, ranking)
}
