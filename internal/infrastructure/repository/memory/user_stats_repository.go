package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/score-predictor/internal/domain/userstats"
)

type UserStatsRepository struct {
	mu    sync.RWMutex
	stats map[string]userstats.Stats
}

func NewUserStatsRepository() *UserStatsRepository {
	return &UserStatsRepository{stats: make(map[string]userstats.Stats)}
}

func (r *UserStatsRepository) Upsert(_ context.Context, stats userstats.Stats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats[stats.UserID] = stats
	return nil
}

func (r *UserStatsRepository) GetByUser(_ context.Context, userID string) (userstats.Stats, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.stats[userID]
	return item, ok, nil
}
