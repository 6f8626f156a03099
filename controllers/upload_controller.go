package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitcrew/gymtrack/config"
	"github.com/fitcrew/gymtrack/models"
	"github.com/fitcrew/gymtrack/utils"
)

const maxAvatarBytes = 2 << 20 // 2 MiB

var allowedAvatarExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// UploadController handles avatar uploads. Files are stored under the upload
// dir with a random name and tracked as unclaimed until a profile adopts the
// URL; the background cleaner removes stale ones.
type UploadController struct {
	db *gorm.DB
}

// NewUploadController creates a new controller instance.
func NewUploadController(db *gorm.DB) *UploadController {
	return &UploadController{db: db}
}

// UploadAvatar accepts a multipart image and returns its served URL.
func (u *UploadController) UploadAvatar(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40080, "missing file field")
		return
	}
	if file.Size > maxAvatarBytes {
		utils.Error(ctx, http.StatusBadRequest, 40081, "file too large")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedAvatarExts[ext] {
		utils.Error(ctx, http.StatusBadRequest, 40082, "unsupported file type")
		return
	}

	cfg := config.Get()
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to prepare upload dir")
		return
	}

	name := uuid.NewString() + ext
	dst := filepath.Join(cfg.UploadDir, name)
	if err := ctx.SaveUploadedFile(file, dst); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to store file")
		return
	}

	url := "/static/uploads/" + name
	record := models.UploadedFile{
		UserID:   userID,
		FilePath: dst,
		URL:      url,
		ExpireAt: time.Now().Add(time.Duration(cfg.UploadClaimTTLHours) * time.Hour),
	}
	if err := u.db.Create(&record).Error; err != nil {
		_ = os.Remove(dst)
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to record upload")
		return
	}

	utils.Success(ctx, gin.H{"url": url})
}
