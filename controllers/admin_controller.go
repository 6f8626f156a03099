package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fitcrew/gymtrack/services"
	"github.com/fitcrew/gymtrack/utils"
)

// AdminController exposes operator-only actions. The competition settlement
// deliberately has no schedule; an operator triggers it after month rollover.
type AdminController struct {
	competition *services.CompetitionService
}

// NewAdminController creates a new controller instance.
func NewAdminController(competition *services.CompetitionService) *AdminController {
	return &AdminController{competition: competition}
}

// SettleCompetition awards the previous month's competition bonus. Safe to
// retry: an already settled month is reported as a conflict, not re-awarded.
func (a *AdminController) SettleCompetition(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40301, "admin privileges required")
		return
	}

	result, err := a.competition.SettlePreviousMonth(time.Now())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadySettled):
			utils.Error(ctx, http.StatusConflict, 40930, err.Error())
		case errors.Is(err, services.ErrNothingToSettle):
			utils.Error(ctx, http.StatusUnprocessableEntity, 42230, err.Error())
		default:
			utils.Sugar.Errorf("competition settlement failed: %v", err)
			utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to settle competition")
		}
		return
	}

	utils.InvalidateByPrefix("cache:ranking:")
	utils.InvalidateByPrefix("cache:user:public:")

	utils.Sugar.Infof("settled competition for %s: %d winner(s) at %d visits",
		result.Month, len(result.Winners), result.MaxVisits)
	utils.Success(ctx, result)
}
