package main

import (
	"time"

	"minitweet/config"
	"minitweet/models"
	"minitweet/routes"
	"minitweet/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.Tweet{}, &models.PageView{})

	// Bootstrap the anonymous account so unauthenticated posts have an owner.
	if cfg.AllowAnonymous {
		anon := models.User{Username: cfg.AnonymousUser}
		if err := db.Where("username = ?", cfg.AnonymousUser).FirstOrCreate(&anon).Error; err != nil {
			utils.Sugar.Warnf("failed to bootstrap anonymous account: %v", err)
		}
	}

	r := routes.SetupRouter(db)

	// Sweep image files whose tweet never made it to the database (best-effort)
	utils.StartOrphanImageSweeper(db, 30*time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
