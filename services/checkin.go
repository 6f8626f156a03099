package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fitcrew/gymtrack/models"
)

// ErrAlreadyCheckedIn is returned when a user already has a visit recorded
// for the current calendar day.
var ErrAlreadyCheckedIn = errors.New("already checked in today")

// CheckInService records daily attendance and keeps the user's derived
// counters (streak, points, monthly points) consistent.
type CheckInService struct {
	db           *gorm.DB
	rewardPoints int
}

// NewCheckInService creates a CheckInService awarding rewardPoints per visit.
func NewCheckInService(db *gorm.DB, rewardPoints int) *CheckInService {
	return &CheckInService{db: db, rewardPoints: rewardPoints}
}

// CheckInResult carries the state written by a successful check-in.
type CheckInResult struct {
	User  models.User
	Visit models.Visit
}

// CheckIn records a visit for userID at now and updates streak, points and
// the current month's points inside one transaction. The visits table has a
// unique (user_id, visit_day) index, so a concurrent duplicate fails on the
// insert itself rather than on a prior read.
func (s *CheckInService) CheckIn(userID uint, now time.Time) (*CheckInResult, error) {
	var res CheckInResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		visit := models.Visit{
			UserID:    userID,
			VisitDate: now,
			VisitDay:  DayStart(now),
		}
		if err := tx.Create(&visit).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyCheckedIn
			}
			return err
		}

		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		yStart, yEnd := YesterdayWindow(now)
		var yesterdayVisits int64
		if err := tx.Model(&models.Visit{}).
			Where("user_id = ? AND visit_date >= ? AND visit_date < ?", userID, yStart, yEnd).
			Count(&yesterdayVisits).Error; err != nil {
			return err
		}

		// A visit yesterday extends the streak. A stored streak of 0 is the
		// first-ever check-in and also extends, even without a visit yesterday.
		newStreak := 1
		if yesterdayVisits > 0 || user.Streak == 0 {
			newStreak = user.Streak + 1
		}

		user.Streak = newStreak
		user.Points += s.rewardPoints
		user.LastVisitAt = &visit.VisitDate
		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		if err := addMonthlyPoints(tx, userID, MonthKey(now), s.rewardPoints); err != nil {
			return err
		}

		res.User = user
		res.Visit = visit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Status reports whether userID already checked in on now's calendar day,
// along with the current counters.
type Status struct {
	CheckedInToday bool       `json:"checked_in_today"`
	Streak         int        `json:"streak"`
	Points         int        `json:"points"`
	LastVisitAt    *time.Time `json:"last_visit_at"`
}

// Status loads the user's check-in state for now's calendar day.
func (s *CheckInService) Status(userID uint, now time.Time) (*Status, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, err
	}

	dStart, dEnd := DayWindow(now)
	var todayVisits int64
	if err := s.db.Model(&models.Visit{}).
		Where("user_id = ? AND visit_date >= ? AND visit_date < ?", userID, dStart, dEnd).
		Count(&todayVisits).Error; err != nil {
		return nil, err
	}

	return &Status{
		CheckedInToday: todayVisits > 0,
		Streak:         user.Streak,
		Points:         user.Points,
		LastVisitAt:    user.LastVisitAt,
	}, nil
}

// addMonthlyPoints increments the (user, month) points row atomically,
// creating it on first write of the month.
func addMonthlyPoints(tx *gorm.DB, userID uint, month string, delta int) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "month"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"points":     gorm.Expr("points + ?", delta),
			"updated_at": time.Now(),
		}),
	}).Create(&models.MonthlyPoints{UserID: userID, Month: month, Points: delta}).Error
}
