package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/score-predictor/internal/domain/prediction"
	qb "github.com/riskibarqy/score-predictor/internal/platform/querybuilder"
)

var predictionColumns = []string{
	"id", "public_id", "fixture_public_id", "user_id", "predicted_home", "predicted_away",
	"is_submitted", "points", "is_correct", "category", "scored_at",
	"created_at", "updated_at", "deleted_at",
}

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) ListSubmittedByFixture(ctx context.Context, fixtureID string) ([]prediction.Prediction, error) {
	query, args, err := qb.Select(predictionColumns...).From("predictions").
		Where(
			qb.Eq("fixture_public_id", fixtureID),
			qb.Eq("is_submitted", true),
			qb.IsNull("deleted_at"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select submitted predictions query: %w", err)
	}
	return r.list(ctx, query, args)
}

func (r *PredictionRepository) ListUnscoredSubmittedByFixture(ctx context.Context, fixtureID string) ([]prediction.Prediction, error) {
	query, args, err := qb.Select(predictionColumns...).From("predictions").
		Where(
			qb.Eq("fixture_public_id", fixtureID),
			qb.Eq("is_submitted", true),
			qb.IsNull("points"),
			qb.IsNull("deleted_at"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select unscored predictions query: %w", err)
	}
	return r.list(ctx, query, args)
}

func (r *PredictionRepository) SaveScore(ctx context.Context, predictionID string, result prediction.Result, scoredAt time.Time) error {
	query, args, err := qb.Update("predictions").
		Set("points", result.Points).
		Set("is_correct", result.IsCorrect).
		Set("category", string(result.Category)).
		Set("scored_at", scoredAt.UTC()).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", predictionID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update prediction score query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update prediction score: %w", err)
	}
	return nil
}

func (r *PredictionRepository) ListScoredByUser(ctx context.Context, userID string) ([]prediction.Prediction, error) {
	query, args, err := qb.Select(predictionColumns...).From("predictions").
		Where(
			qb.Eq("user_id", userID),
			qb.IsNotNull("points"),
			qb.IsNotNull("is_correct"),
			qb.IsNull("deleted_at"),
		).
		OrderBy("scored_at", "fixture_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select scored predictions query: %w", err)
	}
	return r.list(ctx, query, args)
}

func (r *PredictionRepository) ResetScoresByFixture(ctx context.Context, fixtureID string) error {
	query, args, err := qb.Update("predictions").
		Set("points", nil).
		Set("is_correct", nil).
		Set("category", nil).
		Set("scored_at", nil).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("fixture_public_id", fixtureID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build reset prediction scores query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("reset prediction scores: %w", err)
	}
	return nil
}

func (r *PredictionRepository) list(ctx context.Context, query string, args []any) ([]prediction.Prediction, error) {
	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select predictions: %w", err)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, prediction.Prediction{
			ID:            row.PublicID,
			FixtureID:     row.FixtureID,
			UserID:        row.UserID,
			PredictedHome: row.PredictedHome,
			PredictedAway: row.PredictedAway,
			IsSubmitted:   row.IsSubmitted,
			Points:        nullInt64ToIntPtr(row.Points),
			IsCorrect:     nullBoolToPtr(row.IsCorrect),
			Category:      prediction.Category(row.Category.String),
			ScoredAt:      nullTimeToPtr(row.ScoredAt),
		})
	}
	return out, nil
}
