package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fitcrew/gymtrack/models"
)

// testDB opens a fresh in-memory database per test. MaxOpenConns(1) keeps all
// queries on the single connection that owns the :memory: store.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Visit{},
		&models.MonthlyPoints{},
		&models.Achievement{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Name:     username,
		PhotoURL: "/static/avatar-placeholder.svg",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func addVisit(t *testing.T, db *gorm.DB, userID uint, at time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.Visit{
		UserID:    userID,
		VisitDate: at,
		VisitDay:  DayStart(at),
	}).Error)
}

func loadUser(t *testing.T, db *gorm.DB, id uint) models.User {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, id).Error)
	return user
}

func monthlyPointsFor(t *testing.T, db *gorm.DB, userID uint, month string) int {
	t.Helper()
	var row models.MonthlyPoints
	err := db.Where("user_id = ? AND month = ?", userID, month).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return 0
	}
	require.NoError(t, err)
	return row.Points
}
