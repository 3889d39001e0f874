package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
)

type FixtureRepository struct {
	mu       sync.RWMutex
	fixtures map[string]fixture.Fixture
	now      func() time.Time
}

func NewFixtureRepository(fixtures []fixture.Fixture) *FixtureRepository {
	byID := make(map[string]fixture.Fixture, len(fixtures))
	for _, item := range fixtures {
		byID[item.ID] = item
	}

	return &FixtureRepository{fixtures: byID, now: time.Now}
}

func (r *FixtureRepository) ListForWindow(_ context.Context, from, to time.Time) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fixture.Fixture, 0, len(r.fixtures))
	for _, item := range r.fixtures {
		if item.Status == fixture.StatusLive {
			out = append(out, item)
			continue
		}
		if !item.HasKickoff() {
			continue
		}
		kickoff := *item.KickoffAt
		if kickoff.Before(from) || kickoff.After(to) {
			continue
		}
		out = append(out, item)
	}
	sortFixtures(out)
	return out, nil
}

func (r *FixtureRepository) GetByID(_ context.Context, fixtureID string) (fixture.Fixture, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.fixtures[fixtureID]
	return item, ok, nil
}

func (r *FixtureRepository) UpdateLiveState(_ context.Context, fixtureID string, update fixture.LiveUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.fixtures[fixtureID]
	if !ok {
		return fmt.Errorf("fixture=%s not found", fixtureID)
	}
	item.Status = update.Status
	item.HomeScore = update.HomeScore
	item.AwayScore = update.AwayScore
	item.Minute = update.Minute
	item.UpdatedAt = r.now().UTC()
	r.fixtures[fixtureID] = item
	return nil
}

func sortFixtures(items []fixture.Fixture) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.HasKickoff() && b.HasKickoff() && !a.KickoffAt.Equal(*b.KickoffAt):
			return a.KickoffAt.Before(*b.KickoffAt)
		case a.HasKickoff() != b.HasKickoff():
			return a.HasKickoff()
		default:
			return a.ID < b.ID
		}
	})
}
