package usecase

import (
	"context"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	"github.com/riskibarqy/score-predictor/internal/platform/broadcast"
)

// ProviderFixtureState is the live state of one fixture as reported by a score provider.
type ProviderFixtureState struct {
	ExternalID int64
	StatusCode string
	Update     fixture.LiveUpdate
}

// LiveScoreProvider fetches live states for many fixtures in one call.
// Fixtures the provider does not know are absent from the result.
type LiveScoreProvider interface {
	FetchLiveStates(ctx context.Context, externalIDs []int64) (map[int64]ProviderFixtureState, error)
	Source() string
}

type EventPublisher interface {
	Publish(ctx context.Context, msg broadcast.Message) error
}
