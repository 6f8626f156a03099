package models

import "time"

// UploadedFile tracks avatar uploads that have not yet been adopted into a
// profile. Claimed rows are permanent; unclaimed ones expire and get removed
// by the background cleaner.
type UploadedFile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	FilePath  string    `gorm:"size:512;not null" json:"-"`
	URL       string    `gorm:"size:512;index;not null" json:"url"`
	Claimed   bool      `gorm:"default:false" json:"claimed"`
	ExpireAt  time.Time `gorm:"index" json:"expire_at"`
	CreatedAt time.Time `json:"created_at"`
}
