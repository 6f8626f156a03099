package models

import "time"

// Visit stores one check-in event per row. VisitDay is the calendar day of
// VisitDate; the unique (user_id, visit_day) index makes a second check-in on
// the same day fail at insert time instead of relying on a prior read.
type Visit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;uniqueIndex:idx_visit_user_day;not null" json:"user_id"`
	VisitDate time.Time `gorm:"index;not null" json:"visit_date"`
	VisitDay  time.Time `gorm:"uniqueIndex:idx_visit_user_day;type:date;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
