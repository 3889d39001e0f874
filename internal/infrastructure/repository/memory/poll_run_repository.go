package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/score-predictor/internal/domain/pollrun"
)

const maxPollRuns = 500

// PollRunRepository keeps the most recent poll runs in insertion order.
type PollRunRepository struct {
	mu   sync.RWMutex
	runs []pollrun.Run
}

func NewPollRunRepository() *PollRunRepository {
	return &PollRunRepository{}
}

func (r *PollRunRepository) UpsertRun(_ context.Context, run pollrun.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.runs {
		if r.runs[i].RunID == run.RunID {
			r.runs[i] = run
			return nil
		}
	}
	r.runs = append(r.runs, run)
	if len(r.runs) > maxPollRuns {
		r.runs = r.runs[len(r.runs)-maxPollRuns:]
	}
	return nil
}

func (r *PollRunRepository) List() []pollrun.Run {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pollrun.Run, len(r.runs))
	copy(out, r.runs)
	return out
}
