package fixture

import (
	"context"
	"time"
)

type Repository interface {
	// ListForWindow returns fixtures kicking off inside [from, to] plus every fixture still marked LIVE.
	ListForWindow(ctx context.Context, from, to time.Time) ([]Fixture, error)
	GetByID(ctx context.Context, fixtureID string) (Fixture, bool, error)
	// UpdateLiveState is keyed by fixture id and safe to repeat.
	UpdateLiveState(ctx context.Context, fixtureID string, update LiveUpdate) error
}
