package userstats

import (
	"testing"
	"time"

	"github.com/riskibarqy/score-predictor/internal/domain/prediction"
)

func scoredPrediction(fixtureID string, points int, category prediction.Category, at time.Time) prediction.Prediction {
	correct := points > 0
	return prediction.Prediction{
		ID:        "p-" + fixtureID,
		FixtureID: fixtureID,
		UserID:    "user-1",
		Points:    &points,
		IsCorrect: &correct,
		Category:  category,
		ScoredAt:  &at,
	}
}

func TestCompute_AggregatesAndStreaks(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	now := base.Add(48 * time.Hour)
	preds := []prediction.Prediction{
		scoredPrediction("f4", 5, prediction.CategoryExact, base.Add(3*time.Hour)),
		scoredPrediction("f1", 3, prediction.CategoryDifference, base),
		scoredPrediction("f2", 1, prediction.CategoryResult, base.Add(time.Hour)),
		scoredPrediction("f3", 0, prediction.CategoryNone, base.Add(2*time.Hour)),
		scoredPrediction("f5", 1, prediction.CategoryResult, base.Add(4*time.Hour)),
		{ID: "p-unscored", FixtureID: "f6", UserID: "user-1"},
	}

	stats := Compute("user-1", preds, now)
	if stats.TotalPoints != 10 {
		t.Fatalf("unexpected total points: got=%d want=10", stats.TotalPoints)
	}
	if stats.ScoredPredictions != 5 {
		t.Fatalf("unexpected scored count: got=%d want=5", stats.ScoredPredictions)
	}
	if stats.CorrectPredictions != 4 {
		t.Fatalf("unexpected correct count: got=%d want=4", stats.CorrectPredictions)
	}
	if stats.ExactScores != 1 {
		t.Fatalf("unexpected exact count: got=%d want=1", stats.ExactScores)
	}
	if stats.AccuracyRate != 80 {
		t.Fatalf("unexpected accuracy: got=%v want=80", stats.AccuracyRate)
	}
	if stats.CurrentStreak != 2 {
		t.Fatalf("unexpected current streak: got=%d want=2", stats.CurrentStreak)
	}
	if stats.LongestStreak != 2 {
		t.Fatalf("unexpected longest streak: got=%d want=2", stats.LongestStreak)
	}
	if !stats.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected updated at: %s", stats.UpdatedAt)
	}
}

func TestCompute_RecomputeIsStable(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	preds := []prediction.Prediction{
		scoredPrediction("a", 3, prediction.CategoryDifference, at),
		scoredPrediction("b", 3, prediction.CategoryDifference, at),
	}

	first := Compute("user-1", preds, at)
	second := Compute("user-1", preds, at)
	if first != second {
		t.Fatalf("recompute drifted: first=%+v second=%+v", first, second)
	}
}

func TestCompute_Empty(t *testing.T) {
	t.Parallel()

	stats := Compute("user-1", nil, time.Now())
	if stats.ScoredPredictions != 0 || stats.AccuracyRate != 0 || stats.CurrentStreak != 0 {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}
