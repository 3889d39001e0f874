package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/score-predictor/internal/domain/prediction"
)

type PredictionRepository struct {
	mu          sync.RWMutex
	predictions map[string]prediction.Prediction
}

func NewPredictionRepository(items []prediction.Prediction) *PredictionRepository {
	byID := make(map[string]prediction.Prediction, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return &PredictionRepository{predictions: byID}
}

func (r *PredictionRepository) ListSubmittedByFixture(_ context.Context, fixtureID string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, item := range r.predictions {
		if item.FixtureID == fixtureID && item.IsSubmitted {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PredictionRepository) ListUnscoredSubmittedByFixture(_ context.Context, fixtureID string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, item := range r.predictions {
		if item.FixtureID == fixtureID && item.IsSubmitted && !item.IsScored() {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PredictionRepository) SaveScore(_ context.Context, predictionID string, result prediction.Result, scoredAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.predictions[predictionID]
	if !ok {
		return fmt.Errorf("prediction=%s not found", predictionID)
	}
	points := result.Points
	isCorrect := result.IsCorrect
	at := scoredAt
	item.Points = &points
	item.IsCorrect = &isCorrect
	item.Category = result.Category
	item.ScoredAt = &at
	r.predictions[predictionID] = item
	return nil
}

func (r *PredictionRepository) ListScoredByUser(_ context.Context, userID string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, item := range r.predictions {
		if item.UserID == userID && item.IsScored() {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PredictionRepository) ResetScoresByFixture(_ context.Context, fixtureID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, item := range r.predictions {
		if item.FixtureID != fixtureID {
			continue
		}
		item.Points = nil
		item.IsCorrect = nil
		item.Category = ""
		item.ScoredAt = nil
		r.predictions[id] = item
	}
	return nil
}
