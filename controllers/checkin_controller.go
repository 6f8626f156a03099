package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fitcrew/gymtrack/models"
	"github.com/fitcrew/gymtrack/services"
	"github.com/fitcrew/gymtrack/utils"
)

// CheckInController handles daily check-in endpoints and the per-user
// visit/points/achievement history.
type CheckInController struct {
	db      *gorm.DB
	checkin *services.CheckInService
}

// NewCheckInController creates a new controller instance.
func NewCheckInController(db *gorm.DB, checkin *services.CheckInService) *CheckInController {
	return &CheckInController{db: db, checkin: checkin}
}

// DailyCheckIn records today's gym visit and updates streak and points.
func (c *CheckInController) DailyCheckIn(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	result, err := c.checkin.CheckIn(userID, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrAlreadyCheckedIn) {
			utils.Error(ctx, http.StatusConflict, 40030, err.Error())
			return
		}
		utils.Sugar.Errorf("check-in failed for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to record check-in")
		return
	}

	// Leaderboards and the public profile changed.
	utils.InvalidateByPrefix("cache:ranking:")
	utils.InvalidateByPrefix("cache:user:public:")

	utils.Success(ctx, gin.H{
		"user":  userResponse(result.User),
		"visit": result.Visit,
	})
}

// CheckInStatus returns whether the user already checked in today plus counters.
func (c *CheckInController) CheckInStatus(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	status, err := c.checkin.Status(userID, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load check-in status")
		return
	}

	utils.Success(ctx, status)
}

// ListVisits returns the user's visit timestamps in ascending order.
func (c *CheckInController) ListVisits(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var visits []models.Visit
	if err := c.db.Where("user_id = ?", userID).Order("visit_date ASC").Find(&visits).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to load visits")
		return
	}

	dates := make([]time.Time, 0, len(visits))
	for _, v := range visits {
		dates = append(dates, v.VisitDate)
	}
	utils.Success(ctx, gin.H{"visits": dates})
}

// ListMonthlyPoints returns the user's per-month point rows in month order.
func (c *CheckInController) ListMonthlyPoints(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var rows []models.MonthlyPoints
	if err := c.db.Where("user_id = ?", userID).Order("month ASC").Find(&rows).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to load monthly points")
		return
	}

	utils.Success(ctx, gin.H{"monthly_points": rows})
}

// ListAchievements returns the user's achievements, most recent first.
func (c *CheckInController) ListAchievements(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var rows []models.Achievement
	if err := c.db.Where("user_id = ?", userID).Order("achieved_at DESC").Find(&rows).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to load achievements")
		return
	}

	utils.Success(ctx, gin.H{"achievements": rows})
}
