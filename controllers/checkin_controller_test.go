package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fitcrew/gymtrack/config"
	"github.com/fitcrew/gymtrack/middleware"
	"github.com/fitcrew/gymtrack/models"
	"github.com/fitcrew/gymtrack/services"
	"github.com/fitcrew/gymtrack/utils"
)

func setupAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	config.SetForTesting(config.AppConfig{JWTSecret: "test-secret"})
	require.NoError(t, utils.InitLogger(config.Get()))
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Visit{}, &models.MonthlyPoints{}, &models.Achievement{}))

	checkinController := NewCheckInController(db, services.NewCheckInService(db, 10))

	r := gin.New()
	protected := r.Group("/api/v1", middleware.AuthRequired())
	protected.POST("/checkin", checkinController.DailyCheckIn)
	protected.GET("/checkin/status", checkinController.CheckInStatus)
	return r, db
}

func authHeaderFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user.ID, user.Username, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func doRequest(r *gin.Engine, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDailyCheckInEndpoint(t *testing.T) {
	r, db := setupAPI(t)

	user := models.User{Username: "alice", Name: "Alice"}
	require.NoError(t, db.Create(&user).Error)
	auth := authHeaderFor(t, user)

	w := doRequest(r, http.MethodPost, "/api/v1/checkin", auth)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Code int `json:"code"`
		Data struct {
			User struct {
				Streak int `json:"streak"`
				Points int `json:"points"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, 1, resp.Data.User.Streak)
	assert.Equal(t, 10, resp.Data.User.Points)

	// Second check-in the same day is rejected and changes nothing.
	w = doRequest(r, http.MethodPost, "/api/v1/checkin", auth)
	assert.Equal(t, http.StatusConflict, w.Code)

	var visits int64
	require.NoError(t, db.Model(&models.Visit{}).Where("user_id = ?", user.ID).Count(&visits).Error)
	assert.EqualValues(t, 1, visits)
}

func TestCheckInStatusEndpoint(t *testing.T) {
	r, db := setupAPI(t)

	user := models.User{Username: "alice", Name: "Alice"}
	require.NoError(t, db.Create(&user).Error)
	auth := authHeaderFor(t, user)

	w := doRequest(r, http.MethodGet, "/api/v1/checkin/status", auth)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data services.Status `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.CheckedInToday)

	doRequest(r, http.MethodPost, "/api/v1/checkin", auth)

	w = doRequest(r, http.MethodGet, "/api/v1/checkin/status", auth)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.CheckedInToday)
	assert.Equal(t, 1, resp.Data.Streak)
}

func TestCheckInRequiresAuth(t *testing.T) {
	r, _ := setupAPI(t)

	w := doRequest(r, http.MethodPost, "/api/v1/checkin", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, http.MethodPost, "/api/v1/checkin", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
