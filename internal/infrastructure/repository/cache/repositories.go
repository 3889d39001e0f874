package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	"github.com/riskibarqy/score-predictor/internal/domain/userstats"
	basecache "github.com/riskibarqy/score-predictor/internal/platform/cache"
)

// FixtureRepository caches single fixture reads. Window listings always hit the next repository.
type FixtureRepository struct {
	next  fixture.Repository
	cache *basecache.Store[cachedFixtureByID]
}

type cachedFixtureByID struct {
	value  fixture.Fixture
	exists bool
}

func NewFixtureRepository(next fixture.Repository, ttl time.Duration) *FixtureRepository {
	return &FixtureRepository{next: next, cache: basecache.NewStore[cachedFixtureByID](ttl)}
}

func (r *FixtureRepository) ListForWindow(ctx context.Context, from, to time.Time) ([]fixture.Fixture, error) {
	return r.next.ListForWindow(ctx, from, to)
}

func (r *FixtureRepository) GetByID(ctx context.Context, fixtureID string) (fixture.Fixture, bool, error) {
	cached, err := r.cache.GetOrLoad(ctx, fixtureKey(fixtureID), func(ctx context.Context) (cachedFixtureByID, error) {
		item, exists, err := r.next.GetByID(ctx, fixtureID)
		if err != nil {
			return cachedFixtureByID{}, err
		}
		return cachedFixtureByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return fixture.Fixture{}, false, err
	}
	return cached.value, cached.exists, nil
}

func (r *FixtureRepository) UpdateLiveState(ctx context.Context, fixtureID string, update fixture.LiveUpdate) error {
	if err := r.next.UpdateLiveState(ctx, fixtureID, update); err != nil {
		return err
	}
	r.cache.Delete(ctx, fixtureKey(fixtureID))
	return nil
}

func fixtureKey(fixtureID string) string {
	return "fixture:id:" + fixtureID
}

type UserStatsRepository struct {
	next  userstats.Repository
	cache *basecache.Store[cachedUserStats]
}

type cachedUserStats struct {
	value  userstats.Stats
	exists bool
}

func NewUserStatsRepository(next userstats.Repository, ttl time.Duration) *UserStatsRepository {
	return &UserStatsRepository{next: next, cache: basecache.NewStore[cachedUserStats](ttl)}
}

func (r *UserStatsRepository) Upsert(ctx context.Context, stats userstats.Stats) error {
	if err := r.next.Upsert(ctx, stats); err != nil {
		return err
	}
	r.cache.Delete(ctx, userStatsKey(stats.UserID))
	return nil
}

func (r *UserStatsRepository) GetByUser(ctx context.Context, userID string) (userstats.Stats, bool, error) {
	cached, err := r.cache.GetOrLoad(ctx, userStatsKey(userID), func(ctx context.Context) (cachedUserStats, error) {
		item, exists, err := r.next.GetByUser(ctx, userID)
		if err != nil {
			return cachedUserStats{}, err
		}
		return cachedUserStats{value: item, exists: exists}, nil
	})
	if err != nil {
		return userstats.Stats{}, false, err
	}
	return cached.value, cached.exists, nil
}

func userStatsKey(userID string) string {
	return "user-stats:" + userID
}
