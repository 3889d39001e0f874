package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	"github.com/riskibarqy/score-predictor/internal/domain/pollrun"
	"github.com/riskibarqy/score-predictor/internal/platform/logging"
)

const (
	CronActionSkipped = "skipped"
	CronActionPolled  = "polled"
)

type CronTickResult struct {
	Action  string      `json:"action"`
	Reason  string      `json:"reason"`
	Details *PollResult `json:"details,omitempty"`
}

// CronTriggerService lets an external scheduler drive polling without in-process state.
type CronTriggerService struct {
	fixtureRepo fixture.Repository
	poller      *PollService
	logger      *logging.Logger
	location    *time.Location
	lookBehind  time.Duration
	lookAhead   time.Duration
	now         func() time.Time
}

func NewCronTriggerService(fixtureRepo fixture.Repository, poller *PollService, logger *logging.Logger) *CronTriggerService {
	if logger == nil {
		logger = logging.Default()
	}
	cfg := PollServiceConfig{}.normalize()
	if poller != nil {
		cfg = poller.cfg
	}
	return &CronTriggerService{
		fixtureRepo: fixtureRepo,
		poller:      poller,
		logger:      logger,
		location:    cfg.Location,
		lookBehind:  cfg.LookBehind,
		lookAhead:   cfg.LookAhead,
		now:         time.Now,
	}
}

// Tick polls once when the persisted fixtures say a poll is worthwhile.
func (s *CronTriggerService) Tick(ctx context.Context) (CronTickResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CronTriggerService.Tick")
	defer span.End()

	now := s.now().In(s.location)
	fixtures, err := s.fixtureRepo.ListForWindow(ctx, now.Add(-s.lookBehind), now.Add(s.lookAhead))
	if err != nil {
		return CronTickResult{}, fmt.Errorf("%w: list fixtures for cron tick: %v", ErrFixtureStoreUnavailable, err)
	}

	decision := fixture.DecidePoll(now, fixtures)
	if !decision.ShouldPoll {
		scored, failed := s.poller.scorePending(ctx, fixtures)
		s.logger.InfoContext(ctx, "cron tick skipped",
			"reason", decision.Reason,
			"fixtures", len(fixtures),
			"fixtures_scored", scored,
			"scoring_failed", failed,
		)
		s.poller.recordRun(ctx, pollrun.Run{
			Trigger:    pollrun.TriggerCron,
			Status:     pollrun.StatusSkipped,
			Reason:     decision.Reason,
			OccurredAt: now.UTC(),
		})
		return CronTickResult{Action: CronActionSkipped, Reason: decision.Reason}, nil
	}

	result := s.poller.ForcePoll(ctx, pollrun.TriggerCron)
	s.logger.InfoContext(ctx, "cron tick polled",
		"reason", decision.Reason,
		"success", result.Success,
		"fixtures_updated", result.FixturesUpdated,
	)
	return CronTickResult{Action: CronActionPolled, Reason: decision.Reason, Details: &result}, nil
}
