package utils

import (
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"minitweet/config"
	"minitweet/models"
)

// StartOrphanImageSweeper launches a background goroutine that periodically
// deletes stored image files no tweet references anymore, e.g. when a request
// died between persisting the file and persisting the row. Best-effort.
func StartOrphanImageSweeper(db *gorm.DB, interval time.Duration) {
	if db == nil {
		return
	}
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			sweepOrphanImages(db)
		}
	}()
}

func sweepOrphanImages(db *gorm.DB) {
	root := config.Get().UploadsDir
	cutoff := time.Now().Add(-time.Hour)

	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		// Skip young files: their tweet row may not be committed yet.
		if info.ModTime().After(cutoff) {
			return nil
		}
		var count int64
		if err := db.Model(&models.Tweet{}).Where("image_path = ?", path).Count(&count).Error; err != nil {
			return nil
		}
		if count == 0 {
			if rmErr := os.Remove(path); rmErr == nil && Sugar != nil {
				Sugar.Infof("removed orphan image %s", path)
			}
		}
		return nil
	})
}
