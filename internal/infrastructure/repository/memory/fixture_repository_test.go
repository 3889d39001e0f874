package memory

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	"github.com/riskibarqy/score-predictor/internal/domain/prediction"
)

func TestFixtureRepository_ListForWindowIncludesLive(t *testing.T) {
	now := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
	repo := NewFixtureRepository(SeedFixtures(now))

	got, err := repo.ListForWindow(context.Background(), now.Add(-2*time.Hour), now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("list fixtures: %v", err)
	}
	ids := make([]string, 0, len(got))
	for _, item := range got {
		ids = append(ids, item.ID)
	}
	if len(ids) != 2 || ids[0] != "fx-002" || ids[1] != "fx-003" {
		t.Fatalf("unexpected fixtures in window: got=%v want=[fx-002 fx-003]", ids)
	}
}

func TestFixtureRepository_UpdateLiveState(t *testing.T) {
	now := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
	repo := NewFixtureRepository(SeedFixtures(now))
	ctx := context.Background()

	home, away := 3, 1
	if err := repo.UpdateLiveState(ctx, "fx-002", fixture.LiveUpdate{Status: fixture.StatusFinished, HomeScore: &home, AwayScore: &away}); err != nil {
		t.Fatalf("update live state: %v", err)
	}
	got, ok, err := repo.GetByID(ctx, "fx-002")
	if err != nil || !ok {
		t.Fatalf("get fixture: ok=%v err=%v", ok, err)
	}
	if !got.Scored() || *got.HomeScore != 3 || got.Minute != nil {
		t.Fatalf("unexpected fixture after update: %+v", got)
	}

	if err := repo.UpdateLiveState(ctx, "missing", fixture.LiveUpdate{}); err == nil {
		t.Fatalf("expected error for unknown fixture")
	}
}

func TestPredictionRepository_ScoreAndReset(t *testing.T) {
	repo := NewPredictionRepository(SeedPredictions())
	ctx := context.Background()

	submitted, err := repo.ListSubmittedByFixture(ctx, "fx-002")
	if err != nil {
		t.Fatalf("list submitted: %v", err)
	}
	if len(submitted) != 2 {
		t.Fatalf("unexpected submitted count: got=%d want=2", len(submitted))
	}

	at := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	result := prediction.CalculatePoints(2, 0, 2, 0)
	if err := repo.SaveScore(ctx, "pr-001", result, at); err != nil {
		t.Fatalf("save score: %v", err)
	}
	scored, _ := repo.ListScoredByUser(ctx, "user-ayu")
	if len(scored) != 1 || *scored[0].Points != prediction.PointsExact {
		t.Fatalf("unexpected scored predictions: %+v", scored)
	}

	if err := repo.ResetScoresByFixture(ctx, "fx-002"); err != nil {
		t.Fatalf("reset scores: %v", err)
	}
	scored, _ = repo.ListScoredByUser(ctx, "user-ayu")
	if len(scored) != 0 {
		t.Fatalf("expected no scored predictions after reset, got=%d", len(scored))
	}
}
