package models

import "time"

// Achievement types written by the competition settlement.
const AchievementMonthlyWinner = "monthly_winner"

// Achievement is an append-only record of competition awards. Month keeps the
// settled month key so a settlement run can detect it already happened.
type Achievement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Type        string    `gorm:"size:32;index;not null" json:"type"`
	Month       string    `gorm:"size:16;index" json:"month"`
	Description string    `gorm:"size:255" json:"description"`
	BonusPoints int       `json:"bonus_points"`
	AchievedAt  time.Time `gorm:"index;not null" json:"achieved_at"`
	CreatedAt   time.Time `json:"created_at"`
}
