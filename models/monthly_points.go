package models

import "time"

// MonthlyPoints accumulates points per user and calendar month. Month uses the
// legacy "{year}-{zeroBasedMonthIndex}" key (e.g. "2024-0" for January 2024)
// for compatibility with data written by earlier versions of the app.
type MonthlyPoints struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;uniqueIndex:idx_mp_user_month;not null" json:"user_id"`
	Month     string    `gorm:"size:16;uniqueIndex:idx_mp_user_month;not null" json:"month"`
	Points    int       `gorm:"not null;default:0" json:"points"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
