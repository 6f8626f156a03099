package utils

import (
	"os"
	"time"

	"github.com/fitcrew/gymtrack/config"
	"github.com/fitcrew/gymtrack/models"
)

// StartAvatarCleaner launches a background goroutine that periodically deletes
// expired avatar uploads that were never adopted into a profile. Best-effort;
// failures are logged and retried on the next tick.
func StartAvatarCleaner(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			db := config.DB()
			if db == nil {
				continue
			}
			var items []models.UploadedFile
			if err := db.Where("claimed = ? AND expire_at <= ?", false, time.Now()).
				Limit(100).Find(&items).Error; err != nil {
				Sugar.Warnf("avatar cleaner query failed: %v", err)
				continue
			}
			for _, it := range items {
				if it.FilePath != "" {
					_ = os.Remove(it.FilePath)
				}
				// Remove row regardless of file deletion outcome
				if err := db.Delete(&models.UploadedFile{}, it.ID).Error; err != nil {
					Sugar.Warnf("avatar cleaner delete row failed: %v", err)
				}
			}
		}
	}()
}
