package prediction

import (
	"context"
	"time"
)

type Repository interface {
	ListSubmittedByFixture(ctx context.Context, fixtureID string) ([]Prediction, error)
	ListUnscoredSubmittedByFixture(ctx context.Context, fixtureID string) ([]Prediction, error)
	// SaveScore overwrites any previous score, so repeated scoring converges.
	SaveScore(ctx context.Context, predictionID string, result Result, scoredAt time.Time) error
	ListScoredByUser(ctx context.Context, userID string) ([]Prediction, error)
	ResetScoresByFixture(ctx context.Context, fixtureID string) error
}
