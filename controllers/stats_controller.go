package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"minitweet/models"
	"minitweet/utils"
)

// StatsController provides aggregate statistics.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns user, tweet and reply counts plus today's page views.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var userCount int64
	var tweetCount int64
	var replyCount int64
	var dailyViews int64

	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		userCount = 0
	}
	if err := s.db.Model(&models.Tweet{}).Where("parent_id IS NULL").Count(&tweetCount).Error; err != nil {
		tweetCount = 0
	}
	if err := s.db.Model(&models.Tweet{}).Where("parent_id IS NOT NULL").Count(&replyCount).Error; err != nil {
		replyCount = 0
	}

	// Use string date equality to avoid timezone/type mismatches with the DATE column
	today := time.Now().In(time.Local).Format("2006-01-02")
	if err := s.db.Model(&models.PageView{}).
		Where("date = ?", today).
		Select("COALESCE(SUM(count),0)").
		Scan(&dailyViews).Error; err != nil {
		dailyViews = 0
	}

	utils.Success(ctx, gin.H{
		"user_count":  userCount,
		"tweet_count": tweetCount,
		"reply_count": replyCount,
		"daily_views": dailyViews,
	})
}
