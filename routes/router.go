package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fitcrew/gymtrack/config"
	"github.com/fitcrew/gymtrack/controllers"
	"github.com/fitcrew/gymtrack/middleware"
	"github.com/fitcrew/gymtrack/services"
	"github.com/fitcrew/gymtrack/utils"
)

// SetupRouter wires routes, middlewares, services and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Request logs go to their own rolling file, not the app log.
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	checkinService := services.NewCheckInService(db, cfg.CheckinRewardPoints)
	rankingService := services.NewRankingService(db)
	competitionService := services.NewCompetitionService(db, rankingService, cfg.CompetitionBonusPoints)

	authController := controllers.NewAuthController(db)
	checkinController := controllers.NewCheckInController(db, checkinService)
	rankingController := controllers.NewRankingController(rankingService)
	statsController := controllers.NewStatsController(db)
	adminController := controllers.NewAdminController(competitionService)
	uploadController := controllers.NewUploadController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/:provider/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/:provider/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Public leaderboards and stats
	api.GET("/ranking/monthly", rankingController.MonthlyRanking)
	api.GET("/ranking/previous", rankingController.PreviousMonthRanking)
	api.GET("/ranking/all-time", rankingController.AllTimeRanking)
	api.GET("/stats", statsController.GetStats)
	api.GET("/users/:id", authController.GetUserPublic)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.POST("/checkin", checkinController.DailyCheckIn)
	protected.GET("/checkin/status", checkinController.CheckInStatus)
	protected.GET("/visits", checkinController.ListVisits)
	protected.GET("/monthly-points", checkinController.ListMonthlyPoints)
	protected.GET("/achievements", checkinController.ListAchievements)
	protected.POST("/upload/avatar", uploadController.UploadAvatar)
	protected.POST("/admin/competition/settle", adminController.SettleCompetition)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
