package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fitcrew/gymtrack/services"
	"github.com/fitcrew/gymtrack/utils"
)

// Leaderboards change on every check-in, so cache entries stay short-lived
// and get invalidated on writes anyway.
const rankingCacheTTL = time.Minute

// RankingController serves the competition leaderboards.
type RankingController struct {
	ranking *services.RankingService
}

// NewRankingController creates a new controller instance.
func NewRankingController(ranking *services.RankingService) *RankingController {
	return &RankingController{ranking: ranking}
}

// MonthlyRanking returns the current month's leaderboard.
func (r *RankingController) MonthlyRanking(ctx *gin.Context) {
	r.serve(ctx, services.PeriodCurrentMonth, "cache:ranking:monthly")
}

// PreviousMonthRanking returns the previous month's leaderboard.
func (r *RankingController) PreviousMonthRanking(ctx *gin.Context) {
	r.serve(ctx, services.PeriodPreviousMonth, "cache:ranking:previous")
}

// AllTimeRanking returns the all-time leaderboard.
func (r *RankingController) AllTimeRanking(ctx *gin.Context) {
	r.serve(ctx, services.PeriodAllTime, "cache:ranking:alltime")
}

func (r *RankingController) serve(ctx *gin.Context, p services.Period, cacheKey string) {
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	ranking, err := r.ranking.Ranking(p, time.Now())
	if err != nil {
		utils.Sugar.Errorf("ranking computation failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to compute ranking")
		return
	}

	payload := gin.H{"ranking": ranking}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, rankingCacheTTL)
	utils.Success(ctx, payload)
}
