package userstats

import (
	"sort"
	"time"

	"github.com/riskibarqy/score-predictor/internal/domain/prediction"
)

// Stats is a user's aggregate over every scored prediction.
type Stats struct {
	UserID             string
	TotalPoints        int
	ScoredPredictions  int
	CorrectPredictions int
	ExactScores        int
	AccuracyRate       float64
	CurrentStreak      int
	LongestStreak      int
	UpdatedAt          time.Time
}

// Compute rebuilds stats from the full scored set. Unscored predictions are ignored.
// Streaks follow scoring order, with fixture id as the tie breaker.
func Compute(userID string, predictions []prediction.Prediction, now time.Time) Stats {
	scored := make([]prediction.Prediction, 0, len(predictions))
	for _, p := range predictions {
		if p.IsScored() {
			scored = append(scored, p)
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		ti, tj := scoredAt(scored[i]), scoredAt(scored[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return scored[i].FixtureID < scored[j].FixtureID
	})

	stats := Stats{UserID: userID, UpdatedAt: now}
	streak := 0
	for _, p := range scored {
		stats.ScoredPredictions++
		stats.TotalPoints += *p.Points
		if p.Category == prediction.CategoryExact {
			stats.ExactScores++
		}
		if *p.IsCorrect {
			stats.CorrectPredictions++
			streak++
			if streak > stats.LongestStreak {
				stats.LongestStreak = streak
			}
		} else {
			streak = 0
		}
	}
	stats.CurrentStreak = streak

	if stats.ScoredPredictions > 0 {
		rate := float64(stats.CorrectPredictions) / float64(stats.ScoredPredictions) * 100
		stats.AccuracyRate = float64(int(rate*100+0.5)) / 100
	}
	return stats
}

func scoredAt(p prediction.Prediction) time.Time {
	if p.ScoredAt == nil {
		return time.Time{}
	}
	return *p.ScoredAt
}
