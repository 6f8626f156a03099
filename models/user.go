package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a gym member. Passwords are stored as bcrypt hashes only;
// OAuth accounts have an empty hash and carry Provider/ProviderID instead.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"size:64;uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"size:255" json:"-"`
	Name         string     `gorm:"size:128" json:"name"`
	PhotoURL     string     `gorm:"size:512" json:"photo_url"`
	Provider     string     `gorm:"size:32" json:"provider"`
	ProviderID   string     `gorm:"size:255" json:"provider_id"`
	Points       int        `gorm:"default:0" json:"points"`
	Streak       int        `gorm:"default:0" json:"streak"`
	LastVisitAt  *time.Time `json:"last_visit_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
