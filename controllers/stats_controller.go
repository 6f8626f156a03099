package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fitcrew/gymtrack/models"
	"github.com/fitcrew/gymtrack/services"
	"github.com/fitcrew/gymtrack/utils"
)

// StatsController provides aggregate gym statistics.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns member, visit and points totals plus today's check-ins.
// Individual failures fall back to 0 instead of failing the whole endpoint.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var userCount int64
	var visitCount int64
	var todayCheckins int64
	var totalPoints int64

	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		userCount = 0
	}

	if err := s.db.Model(&models.Visit{}).Count(&visitCount).Error; err != nil {
		visitCount = 0
	}

	dStart, dEnd := services.DayWindow(time.Now())
	if err := s.db.Model(&models.Visit{}).
		Where("visit_date >= ? AND visit_date < ?", dStart, dEnd).
		Count(&todayCheckins).Error; err != nil {
		todayCheckins = 0
	}

	if err := s.db.Model(&models.User{}).
		Select("COALESCE(SUM(points),0)").
		Scan(&totalPoints).Error; err != nil {
		totalPoints = 0
	}

	utils.Success(ctx, gin.H{
		"user_count":     userCount,
		"visit_count":    visitCount,
		"today_checkins": todayCheckins,
		"total_points":   totalPoints,
	})
}
