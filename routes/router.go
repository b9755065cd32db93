package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"minitweet/config"
	"minitweet/controllers"
	"minitweet/middleware"
	"minitweet/models"
	"minitweet/utils"
)

// TweetsMount is the URL prefix all tweet pages live under.
const TweetsMount = "/api/v1/tweets"

// SetupRouter wires routes, middlewares, and controllers.
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
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
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

	// Request guards: oversized uploads are rejected before handler logic,
	// and nothing runs until the one-time database readiness check passes.
	r.Use(middleware.BodyLimit(TweetsMount))
	r.Use(middleware.DatabaseCheck(db, &models.User{}, &models.Tweet{}, &models.PageView{}))
	// Record tweet page views after each request
	r.Use(middleware.PageViewRecorder(db, TweetsMount))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			utils.Error(ctx, http.StatusServiceUnavailable, 50301, "database unreachable")
			return
		}
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	tweetController := controllers.NewTweetController(db, TweetsMount)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.DELETE("/me", middleware.AuthRequired(), authController.DeleteAccount)

	api.GET("/stats", statsController.GetStats)

	tweets := api.Group("/tweets")
	tweets.GET("", tweetController.ListTweets)
	tweets.GET("/:id", tweetController.GetTweet)
	tweets.GET("/:id/stats", tweetController.TweetStats)

	// Create and reply resolve the author through the anonymous posting
	// policy, so auth is optional here.
	posting := tweets.Group("")
	posting.Use(middleware.OptionalAuth(), middleware.RateLimitMiddleware())
	posting.POST("", tweetController.CreateTweet)
	posting.GET("/create", tweetController.NewTweet)
	posting.POST("/create", tweetController.CreateTweetPage)
	posting.POST("/:id/reply", tweetController.ReplyTweet)

	owned := tweets.Group("")
	owned.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	owned.GET("/:id/update", tweetController.EditTweet)
	owned.POST("/:id/update", tweetController.UpdateTweet)
	owned.GET("/:id/delete", tweetController.ConfirmDeleteTweet)
	owned.POST("/:id/delete", tweetController.DeleteTweet)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
