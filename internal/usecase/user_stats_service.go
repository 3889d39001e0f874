package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/score-predictor/internal/domain/userstats"
)

type UserStatsService struct {
	repo userstats.Repository
}

type UserStatsView struct {
	UserID             string    `json:"userId"`
	TotalPoints        int       `json:"totalPoints"`
	ScoredPredictions  int       `json:"scoredPredictions"`
	CorrectPredictions int       `json:"correctPredictions"`
	ExactScores        int       `json:"exactScores"`
	AccuracyRate       float64   `json:"accuracyRate"`
	CurrentStreak      int       `json:"currentStreak"`
	LongestStreak      int       `json:"longestStreak"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func NewUserStatsService(repo userstats.Repository) *UserStatsService {
	return &UserStatsService{repo: repo}
}

// Get returns the stored aggregate for userID. Users without scored predictions are not found.
func (s *UserStatsService) Get(ctx context.Context, userID string) (UserStatsView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserStatsService.Get")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return UserStatsView{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	stats, ok, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return UserStatsView{}, fmt.Errorf("get user stats user=%s: %w", userID, err)
	}
	if !ok {
		return UserStatsView{}, fmt.Errorf("%w: user=%s", ErrUserStatsNotFound, userID)
	}

	return UserStatsView{
		UserID:             stats.UserID,
		TotalPoints:        stats.TotalPoints,
		ScoredPredictions:  stats.ScoredPredictions,
		CorrectPredictions: stats.CorrectPredictions,
		ExactScores:        stats.ExactScores,
		AccuracyRate:       stats.AccuracyRate,
		CurrentStreak:      stats.CurrentStreak,
		LongestStreak:      stats.LongestStreak,
		UpdatedAt:          stats.UpdatedAt,
	}, nil
}
