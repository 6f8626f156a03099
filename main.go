package main

import (
	"time"

	"github.com/fitcrew/gymtrack/config"
	"github.com/fitcrew/gymtrack/models"
	"github.com/fitcrew/gymtrack/routes"
	"github.com/fitcrew/gymtrack/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Visit{},
		&models.MonthlyPoints{},
		&models.Achievement{},
		&models.UploadedFile{},
	)

	r := routes.SetupRouter(db)

	// Background removal of avatar uploads nobody adopted (best-effort)
	utils.StartAvatarCleaner(5 * time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
