package services

import (
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/fitcrew/gymtrack/models"
)

// RankEntry is one leaderboard row. Streak and points are omitted for the
// previous-month board, which only ever showed visit counts.
type RankEntry struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	PhotoURL string `json:"photoUrl"`
	Visits   int    `json:"visits"`
	Streak   int    `json:"streak,omitempty"`
	Points   int    `json:"points,omitempty"`
}

// RankingService builds visit-count leaderboards over a time window.
type RankingService struct {
	db *gorm.DB
}

// NewRankingService creates a RankingService.
func NewRankingService(db *gorm.DB) *RankingService {
	return &RankingService{db: db}
}

// Ranking returns all users ordered by descending visit count within the
// period's window. Per-user counts are fetched concurrently; ties keep the
// relative order of the underlying user fetch (ascending id), so equal-count
// users sort deterministically. Callers truncate to top-N for display.
func (r *RankingService) Ranking(p Period, now time.Time) ([]RankEntry, error) {
	var users []models.User
	if err := r.db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}

	start, end, bounded := PeriodWindow(p, now)

	entries := make([]RankEntry, len(users))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i, user := range users {
		wg.Add(1)
		go func(i int, user models.User) {
			defer wg.Done()

			q := r.db.Model(&models.Visit{}).Where("user_id = ?", user.ID)
			if bounded {
				q = q.Where("visit_date >= ? AND visit_date < ?", start, end)
			}
			var visits int64
			if err := q.Count(&visits).Error; err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}

			entry := RankEntry{
				ID:       user.ID,
				Name:     user.Name,
				Username: user.Username,
				PhotoURL: user.PhotoURL,
				Visits:   int(visits),
			}
			if p != PeriodPreviousMonth {
				entry.Streak = user.Streak
				entry.Points = user.Points
			}
			entries[i] = entry
		}(i, user)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Visits > entries[b].Visits
	})
	return entries, nil
}
