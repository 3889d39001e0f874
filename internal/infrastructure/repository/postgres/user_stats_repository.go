package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/score-predictor/internal/domain/userstats"
	qb "github.com/riskibarqy/score-predictor/internal/platform/querybuilder"
)

type UserStatsRepository struct {
	db *sqlx.DB
}

func NewUserStatsRepository(db *sqlx.DB) *UserStatsRepository {
	return &UserStatsRepository{db: db}
}

func (r *UserStatsRepository) Upsert(ctx context.Context, stats userstats.Stats) error {
	model := userStatsTableModel{
		UserID:             stats.UserID,
		TotalPoints:        stats.TotalPoints,
		ScoredPredictions:  stats.ScoredPredictions,
		CorrectPredictions: stats.CorrectPredictions,
		ExactScores:        stats.ExactScores,
		AccuracyRate:       stats.AccuracyRate,
		CurrentStreak:      stats.CurrentStreak,
		LongestStreak:      stats.LongestStreak,
		UpdatedAt:          stats.UpdatedAt.UTC(),
	}

	query, args, err := qb.UpsertModel("user_stats", model, "user_id")
	if err != nil {
		return fmt.Errorf("build upsert user stats query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert user stats user=%s: %w", stats.UserID, err)
	}
	return nil
}

func (r *UserStatsRepository) GetByUser(ctx context.Context, userID string) (userstats.Stats, bool, error) {
	query, args, err := qb.Select("*").From("user_stats").
		Where(qb.Eq("user_id", userID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return userstats.Stats{}, false, fmt.Errorf("build select user stats query: %w", err)
	}

	var row userStatsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return userstats.Stats{}, false, nil
		}
		return userstats.Stats{}, false, fmt.Errorf("select user stats: %w", err)
	}

	return userstats.Stats{
		UserID:             row.UserID,
		TotalPoints:        row.TotalPoints,
		ScoredPredictions:  row.ScoredPredictions,
		CorrectPredictions: row.CorrectPredictions,
		ExactScores:        row.ExactScores,
		AccuracyRate:       row.AccuracyRate,
		CurrentStreak:      row.CurrentStreak,
		LongestStreak:      row.LongestStreak,
		UpdatedAt:          row.UpdatedAt.UTC(),
	}, true, nil
}
