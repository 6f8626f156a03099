package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fitcrew/gymtrack/models"
)

var (
	// ErrAlreadySettled is returned when the previous month's competition
	// was settled before.
	ErrAlreadySettled = errors.New("competition already settled for this month")
	// ErrNothingToSettle is returned when nobody visited in the previous month.
	ErrNothingToSettle = errors.New("no visits recorded for the previous month")
)

// CompetitionService settles the monthly visit-count competition. It has no
// scheduler on purpose; settlement is an explicitly invoked operation.
type CompetitionService struct {
	db          *gorm.DB
	ranking     *RankingService
	bonusPoints int
}

// NewCompetitionService creates a CompetitionService awarding bonusPoints per winner.
func NewCompetitionService(db *gorm.DB, ranking *RankingService, bonusPoints int) *CompetitionService {
	return &CompetitionService{db: db, ranking: ranking, bonusPoints: bonusPoints}
}

// SettlementResult describes one settlement run.
type SettlementResult struct {
	Month       string      `json:"month"`
	MaxVisits   int         `json:"max_visits"`
	BonusPoints int         `json:"bonus_points"`
	Winners     []RankEntry `json:"winners"`
}

// SettlePreviousMonth awards the bonus to every user tied at the previous
// month's maximum visit count and records an achievement per winner. Re-runs
// for an already settled month return ErrAlreadySettled; the achievement rows
// double as the settlement marker.
func (c *CompetitionService) SettlePreviousMonth(now time.Time) (*SettlementResult, error) {
	month := PreviousMonthKey(now)

	ranking, err := c.ranking.Ranking(PeriodPreviousMonth, now)
	if err != nil {
		return nil, err
	}
	if len(ranking) == 0 || ranking[0].Visits == 0 {
		return nil, ErrNothingToSettle
	}

	maxVisits := ranking[0].Visits
	var winners []RankEntry
	for _, entry := range ranking {
		if entry.Visits < maxVisits {
			break
		}
		winners = append(winners, entry)
	}

	err = c.db.Transaction(func(tx *gorm.DB) error {
		var settled int64
		if err := tx.Model(&models.Achievement{}).
			Where("type = ? AND month = ?", models.AchievementMonthlyWinner, month).
			Count(&settled).Error; err != nil {
			return err
		}
		if settled > 0 {
			return ErrAlreadySettled
		}

		for _, winner := range winners {
			if err := tx.Model(&models.User{}).
				Where("id = ?", winner.ID).
				Update("points", gorm.Expr("points + ?", c.bonusPoints)).Error; err != nil {
				return err
			}
			if err := addMonthlyPoints(tx, winner.ID, month, c.bonusPoints); err != nil {
				return err
			}
			achievement := models.Achievement{
				UserID:      winner.ID,
				Type:        models.AchievementMonthlyWinner,
				Month:       month,
				Description: fmt.Sprintf("Won the monthly competition (%s) with %d visits", month, maxVisits),
				BonusPoints: c.bonusPoints,
				AchievedAt:  now,
			}
			if err := tx.Create(&achievement).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &SettlementResult{
		Month:       month,
		MaxVisits:   maxVisits,
		BonusPoints: c.bonusPoints,
		Winners:     winners,
	}, nil
}
