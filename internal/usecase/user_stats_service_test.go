package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/score-predictor/internal/domain/userstats"
	userstatsmock "github.com/riskibarqy/score-predictor/internal/mocks/domain/userstats"
)

func TestUserStatsService_Get(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := userstatsmock.NewRepository(t)
	repo.On("GetByUser", ctx, "u1").
		Return(userstats.Stats{UserID: "u1", TotalPoints: 8, ScoredPredictions: 2, CorrectPredictions: 2, ExactScores: 1, AccuracyRate: 100, CurrentStreak: 2, LongestStreak: 2}, true, nil).
		Once()

	view, err := NewUserStatsService(repo).Get(ctx, " u1 ")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if view.TotalPoints != 8 || view.ExactScores != 1 || view.LongestStreak != 2 {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestUserStatsService_Get_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("blank user id", func(t *testing.T) {
		t.Parallel()
		_, err := NewUserStatsService(userstatsmock.NewRepository(t)).Get(ctx, "  ")
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("got=%v want=%v", err, ErrInvalidInput)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		repo := userstatsmock.NewRepository(t)
		repo.On("GetByUser", ctx, "ghost").Return(userstats.Stats{}, false, nil).Once()
		_, err := NewUserStatsService(repo).Get(ctx, "ghost")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("got=%v want=%v", err, ErrNotFound)
		}
		if !errors.Is(err, ErrUserStatsNotFound) {
			t.Fatalf("got=%v want=%v", err, ErrUserStatsNotFound)
		}
	})

	t.Run("repository failure", func(t *testing.T) {
		t.Parallel()
		repo := userstatsmock.NewRepository(t)
		boom := errors.New("db down")
		repo.On("GetByUser", ctx, "u1").Return(userstats.Stats{}, false, boom).Once()
		_, err := NewUserStatsService(repo).Get(ctx, "u1")
		if !errors.Is(err, boom) {
			t.Fatalf("got=%v want=%v", err, boom)
		}
	})
}
