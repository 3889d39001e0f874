package postgres

import "time"

type userStatsTableModel struct {
	UserID             string    `db:"user_id"`
	TotalPoints        int       `db:"total_points"`
	ScoredPredictions  int       `db:"scored_predictions"`
	CorrectPredictions int       `db:"correct_predictions"`
	ExactScores        int       `db:"exact_scores"`
	AccuracyRate       float64   `db:"accuracy_rate"`
	CurrentStreak      int       `db:"current_streak"`
	LongestStreak      int       `db:"longest_streak"`
	UpdatedAt          time.Time `db:"updated_at"`
}
