package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	"github.com/riskibarqy/score-predictor/internal/domain/pollrun"
	"github.com/riskibarqy/score-predictor/internal/platform/broadcast"
	"github.com/riskibarqy/score-predictor/internal/platform/cache"
	"github.com/riskibarqy/score-predictor/internal/platform/id"
	"github.com/riskibarqy/score-predictor/internal/platform/logging"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

type PollState string

const (
	PollStateStopped PollState = "STOPPED"
	PollStateActive  PollState = "ACTIVE"
)

const (
	defaultPollInterval     = 15 * time.Minute
	defaultPollFetchTimeout = 20 * time.Second
	defaultPollWorkers      = 4
	defaultPollLookBehind   = 4 * time.Hour
	defaultPollLookAhead    = 36 * time.Hour
	defaultFixtureCacheTTL  = 30 * time.Second

	fixtureWindowCacheKey = "poll:fixtures:window"
	pollCycleFlightKey    = "poll:cycle"
)

type PollServiceConfig struct {
	Interval        time.Duration
	FetchTimeout    time.Duration
	Workers         int
	FixtureCacheTTL time.Duration
	LookBehind      time.Duration
	LookAhead       time.Duration
	Location        *time.Location
}

func (c PollServiceConfig) normalize() PollServiceConfig {
	if c.Interval <= 0 {
		c.Interval = defaultPollInterval
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = defaultPollFetchTimeout
	}
	if c.Workers < 1 {
		c.Workers = defaultPollWorkers
	}
	if c.FixtureCacheTTL <= 0 {
		c.FixtureCacheTTL = defaultFixtureCacheTTL
	}
	if c.LookBehind <= 0 {
		c.LookBehind = defaultPollLookBehind
	}
	if c.LookAhead <= 0 {
		c.LookAhead = defaultPollLookAhead
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	return c
}

type PollStatus struct {
	IsActive           bool               `json:"isActive"`
	State              PollState          `json:"state"`
	LastPoll           *time.Time         `json:"lastPoll"`
	NextPoll           *time.Time         `json:"nextPoll"`
	CurrentlyLiveCount int                `json:"currentlyLiveCount"`
	NextPollingWindow  *PollingWindowView `json:"nextPollingWindow"`
}

// PollingWindowView is the earliest fixture polling window that has not ended,
// as seen by the last cycle or smart start evaluation.
type PollingWindowView struct {
	FixtureID string    `json:"fixtureId"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

type PollResult struct {
	RunID            string    `json:"runId"`
	Trigger          string    `json:"trigger"`
	Success          bool      `json:"success"`
	Source           string    `json:"source,omitempty"`
	FixturesChecked  int       `json:"fixturesChecked"`
	FixturesUpdated  int       `json:"fixturesUpdated"`
	FixturesFinished int       `json:"fixturesFinished"`
	FixturesFailed   int       `json:"fixturesFailed"`
	FixturesScored   int       `json:"fixturesScored"`
	ScoringFailed    int       `json:"scoringFailed"`
	LiveCount        int       `json:"liveCount"`
	Error            string    `json:"error,omitempty"`
	PolledAt         time.Time `json:"polledAt"`
}

type SmartStartResult struct {
	ShouldPoll bool       `json:"shouldPoll"`
	Reason     string     `json:"reason"`
	Action     string     `json:"action"`
	Status     PollStatus `json:"status"`
}

// LiveFixture is the client-facing view of a fixture's live state.
type LiveFixture struct {
	ID        string     `json:"id"`
	Gameweek  int        `json:"gameweek"`
	HomeTeam  string     `json:"homeTeam"`
	AwayTeam  string     `json:"awayTeam"`
	KickoffAt *time.Time `json:"kickoffAt"`
	Status    string     `json:"status"`
	HomeScore *int       `json:"homeScore"`
	AwayScore *int       `json:"awayScore"`
	Minute    *int       `json:"minute"`
}

// LiveWindowView is the snapshot sent to new stream subscribers and served by the live matches endpoint.
type LiveWindowView struct {
	IsLive           bool          `json:"isLive"`
	LiveCount        int           `json:"liveCount"`
	MatchesInWindow  []LiveFixture `json:"matchesInWindow"`
	NextMatchKickoff *time.Time    `json:"nextMatchKickoff"`
	AllTodayFinished bool          `json:"allTodayFinished"`
	Fixtures         []LiveFixture `json:"fixtures"`
}

type LiveUpdatePayload struct {
	Fixtures  []LiveFixture `json:"fixtures"`
	LiveCount int           `json:"liveCount"`
	Source    string        `json:"source,omitempty"`
}

// PollService owns the polling session: one recurring job at most, shared cycle execution.
type PollService struct {
	fixtureRepo fixture.Repository
	runRepo     pollrun.Repository
	provider    LiveScoreProvider
	scoring     *ScoringService
	publisher   EventPublisher
	ids         id.Generator
	cfg         PollServiceConfig
	logger      *logging.Logger
	now         func() time.Time

	fixtureCache *cache.Store[[]fixture.Fixture]
	cycleFlight  singleflight.Group

	mu        sync.Mutex
	scheduler *cron.Cron
	entryID   cron.EntryID
	active    bool
	lastPoll   *time.Time
	nextPoll   *time.Time
	liveCount  int
	nextWindow *PollingWindowView
}

func NewPollService(
	fixtureRepo fixture.Repository,
	runRepo pollrun.Repository,
	provider LiveScoreProvider,
	scoring *ScoringService,
	publisher EventPublisher,
	ids id.Generator,
	cfg PollServiceConfig,
	logger *logging.Logger,
) *PollService {
	cfg = cfg.normalize()
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	return &PollService{
		fixtureRepo:  fixtureRepo,
		runRepo:      runRepo,
		provider:     provider,
		scoring:      scoring,
		publisher:    publisher,
		ids:          ids,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
		fixtureCache: cache.NewStore[[]fixture.Fixture](cfg.FixtureCacheTTL),
	}
}

func (s *PollService) Status() PollStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := PollStatus{
		IsActive:           s.active,
		State:              PollStateStopped,
		LastPoll:           copyTime(s.lastPoll),
		CurrentlyLiveCount: s.liveCount,
	}
	if s.nextWindow != nil {
		window := *s.nextWindow
		status.NextPollingWindow = &window
	}
	if s.active {
		status.State = PollStateActive
		status.NextPoll = s.nextPollLocked()
	}
	return status
}

// Start registers the recurring poll job and runs one cycle immediately.
// It reports false when polling was already active.
func (s *PollService) Start(ctx context.Context) bool {
	return s.start(ctx, pollrun.TriggerManual)
}

func (s *PollService) start(ctx context.Context, trigger pollrun.Trigger) bool {
	ctx, span := startUsecaseSpan(ctx, "usecase.PollService.Start")
	defer span.End()

	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return false
	}

	cronLog := cronLogger{logger: s.logger}
	scheduler := cron.New(
		cron.WithLocation(s.cfg.Location),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	entryID, err := scheduler.AddFunc("@every "+s.cfg.Interval.String(), s.runScheduled)
	if err != nil {
		s.mu.Unlock()
		s.logger.ErrorContext(ctx, "register poll job failed", "interval", s.cfg.Interval.String(), "error", err)
		return false
	}
	scheduler.Start()

	s.scheduler = scheduler
	s.entryID = entryID
	s.active = true
	next := s.now().Add(s.cfg.Interval)
	s.nextPoll = &next
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "live polling started", "interval", s.cfg.Interval.String(), "trigger", string(trigger))

	s.ForcePoll(ctx, trigger)
	return true
}

// Stop cancels the recurring job. Cycles already running finish on their own.
// It reports false when polling was not active.
func (s *PollService) Stop() bool {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return false
	}
	scheduler := s.scheduler
	s.scheduler = nil
	s.entryID = 0
	s.active = false
	s.nextPoll = nil
	s.mu.Unlock()

	if scheduler != nil {
		scheduler.Stop()
	}
	s.logger.Info("live polling stopped")
	return true
}

func (s *PollService) Restart(ctx context.Context) bool {
	s.Stop()
	return s.Start(ctx)
}

// SmartStart starts polling when the fixture window needs it and stops it when it does not.
func (s *PollService) SmartStart(ctx context.Context) (SmartStartResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PollService.SmartStart")
	defer span.End()

	now := s.localNow()
	fixtures, err := s.fixtureCache.GetOrLoad(ctx, fixtureWindowCacheKey, func(ctx context.Context) ([]fixture.Fixture, error) {
		return s.loadWindow(ctx, now)
	})
	if err != nil {
		return SmartStartResult{}, fmt.Errorf("%w: load window for smart start: %v", ErrFixtureStoreUnavailable, err)
	}

	s.rememberNextWindow(fixtures, now)
	decision := fixture.DecidePoll(now, fixtures)
	result := SmartStartResult{ShouldPoll: decision.ShouldPoll, Reason: decision.Reason, Action: "unchanged"}

	switch {
	case decision.ShouldPoll && !s.isActive():
		if s.start(ctx, pollrun.TriggerSmartStart) {
			result.Action = "started"
		}
	case !decision.ShouldPoll && s.isActive():
		if s.Stop() {
			result.Action = "stopped"
		}
	}

	if result.Action == "stopped" {
		s.recordRun(ctx, pollrun.Run{
			Trigger:    pollrun.TriggerSmartStart,
			Status:     pollrun.StatusSkipped,
			Reason:     decision.Reason,
			OccurredAt: now,
		})
	}

	result.Status = s.Status()
	s.logger.DebugContext(ctx, "smart start evaluated",
		"should_poll", decision.ShouldPoll,
		"reason", decision.Reason,
		"action", result.Action,
	)
	return result, nil
}

// ForcePoll runs one poll cycle regardless of the scheduler state.
// Concurrent callers share the cycle already in flight.
func (s *PollService) ForcePoll(ctx context.Context, trigger pollrun.Trigger) PollResult {
	ctx, span := startUsecaseSpan(ctx, "usecase.PollService.ForcePoll")
	defer span.End()

	value, _, _ := s.cycleFlight.Do(pollCycleFlightKey, func() (any, error) {
		return s.runCycle(context.WithoutCancel(ctx), trigger), nil
	})
	result, _ := value.(PollResult)
	return result
}

// LiveWindow returns the summary of the current fixture window.
func (s *PollService) LiveWindow(ctx context.Context) (LiveWindowView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PollService.LiveWindow")
	defer span.End()

	now := s.localNow()
	fixtures, err := s.fixtureCache.GetOrLoad(ctx, fixtureWindowCacheKey, func(ctx context.Context) ([]fixture.Fixture, error) {
		return s.loadWindow(ctx, now)
	})
	if err != nil {
		return LiveWindowView{}, fmt.Errorf("%w: load window: %v", ErrFixtureStoreUnavailable, err)
	}

	summary := fixture.ComputeLiveWindowSummary(fixtures, now)
	return LiveWindowView{
		IsLive:           summary.IsLive,
		LiveCount:        len(summary.MatchesInWindow),
		MatchesInWindow:  toLiveFixtures(summary.MatchesInWindow),
		NextMatchKickoff: copyTime(summary.NextMatchKickoff),
		AllTodayFinished: summary.AllTodayFinished,
		Fixtures:         toLiveFixtures(fixtures),
	}, nil
}

func (s *PollService) runScheduled() {
	result := s.ForcePoll(context.Background(), pollrun.TriggerTimer)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		next := result.PolledAt.Add(s.cfg.Interval)
		s.nextPoll = &next
	}
}

func (s *PollService) runCycle(ctx context.Context, trigger pollrun.Trigger) PollResult {
	now := s.localNow()
	result := PollResult{Trigger: string(trigger), PolledAt: now.UTC(), Source: s.provider.Source()}
	runID, err := s.ids.NewID()
	if err != nil {
		s.logger.WarnContext(ctx, "generate poll run id failed", "error", err)
	}
	result.RunID = runID

	fixtures, err := s.loadWindow(ctx, now)
	if err != nil {
		return s.failCycle(ctx, result, fmt.Errorf("load fixtures: %w", err))
	}

	targets := fixture.PollTargets(fixtures, now)
	result.FixturesChecked = len(targets)
	if len(targets) == 0 {
		result.FixturesScored, result.ScoringFailed = s.scorePending(ctx, fixtures)
		result.Success = true
		result.LiveCount = len(fixture.ComputeLiveWindowSummary(fixtures, now).MatchesInWindow)
		s.finishCycle(ctx, result, fixtures, "no fixtures in polling window")
		return result
	}

	externalIDs := make([]int64, 0, len(targets))
	for _, item := range targets {
		externalIDs = append(externalIDs, item.ExternalID)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	states, err := s.provider.FetchLiveStates(fetchCtx, externalIDs)
	cancel()
	if err != nil {
		return s.failCycle(ctx, result, fmt.Errorf("fetch live states from %s: %w", s.provider.Source(), err))
	}

	updated, outcome, err := s.applyStates(ctx, targets, states)
	if err != nil {
		return s.failCycle(ctx, result, err)
	}
	result.FixturesUpdated = outcome.updated
	result.FixturesFinished = outcome.finished
	result.FixturesFailed = outcome.failed

	merged := mergeFixtures(fixtures, updated)
	result.FixturesScored, result.ScoringFailed = s.scorePending(ctx, merged)
	result.LiveCount = len(fixture.ComputeLiveWindowSummary(merged, now).MatchesInWindow)
	result.Success = true

	s.publish(ctx, broadcast.NewMessage(broadcast.EventUpdate, LiveUpdatePayload{
		Fixtures:  toLiveFixtures(fixture.PollTargets(merged, now)),
		LiveCount: result.LiveCount,
		Source:    result.Source,
	}, now))

	s.finishCycle(ctx, result, merged, "")
	return result
}

type applyOutcome struct {
	updated  int
	finished int
	failed   int
}

func (s *PollService) applyStates(
	ctx context.Context,
	targets []fixture.Fixture,
	states map[int64]ProviderFixtureState,
) (map[string]fixture.Fixture, applyOutcome, error) {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		outcome applyOutcome
		updated = make(map[string]fixture.Fixture, len(targets))
	)

	pool, err := ants.NewPool(s.cfg.Workers)
	if err != nil {
		return nil, applyOutcome{}, fmt.Errorf("create poll worker pool: %w", err)
	}
	defer pool.Release()

	for _, item := range targets {
		state, ok := states[item.ExternalID]
		if !ok {
			continue
		}
		item := item
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()

			next, finished, err := s.applyState(ctx, item, state)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				outcome.failed++
			case next != nil:
				updated[next.ID] = *next
				outcome.updated++
				if finished {
					outcome.finished++
				}
			}
		}); err != nil {
			wg.Done()
			s.logger.WarnContext(ctx, "submit fixture update failed", "fixture_id", item.ID, "error", err)
			mu.Lock()
			outcome.failed++
			mu.Unlock()
		}
	}
	wg.Wait()

	return updated, outcome, nil
}

// applyState persists a changed fixture and reports whether it just moved to FINISHED.
// A nil fixture means nothing changed.
func (s *PollService) applyState(ctx context.Context, current fixture.Fixture, state ProviderFixtureState) (*fixture.Fixture, bool, error) {
	next, changed := current.Apply(state.Update)
	if !changed {
		return nil, false, nil
	}

	if err := s.fixtureRepo.UpdateLiveState(ctx, current.ID, next.LiveUpdate()); err != nil {
		s.logger.WarnContext(ctx, "update fixture live state failed",
			"fixture_id", current.ID,
			"external_id", current.ExternalID,
			"error", err,
		)
		return nil, false, err
	}
	next.UpdatedAt = s.now().UTC()

	finished := current.Status != fixture.StatusFinished && next.Status == fixture.StatusFinished
	s.logger.InfoContext(ctx, "fixture live state changed",
		"fixture_id", current.ID,
		"status_from", string(current.Status),
		"status_to", string(next.Status),
		"provider_status", state.StatusCode,
	)
	return &next, finished, nil
}

// scorePending scores every finished fixture that still has unscored submitted predictions.
// A fixture that failed in an earlier cycle is picked up again here.
func (s *PollService) scorePending(ctx context.Context, fixtures []fixture.Fixture) (scored, failed int) {
	if s.scoring == nil {
		return 0, 0
	}
	for _, item := range fixtures {
		if item.Status != fixture.StatusFinished || !item.Scored() {
			continue
		}
		pending, err := s.scoring.PendingCount(ctx, item.ID)
		if err != nil {
			failed++
			s.logger.ErrorContext(ctx, "list unscored predictions failed", "fixture_id", item.ID, "error", err)
			continue
		}
		if pending == 0 {
			continue
		}
		if _, err := s.scoring.ScoreFixture(ctx, item); err != nil {
			failed++
			s.logger.ErrorContext(ctx, "score finished fixture failed",
				"fixture_id", item.ID,
				"pending_predictions", pending,
				"error", err,
			)
			continue
		}
		scored++
	}
	return scored, failed
}

func (s *PollService) failCycle(ctx context.Context, result PollResult, err error) PollResult {
	result.Success = false
	result.Error = err.Error()
	s.logger.WarnContext(ctx, "poll cycle failed", "run_id", result.RunID, "trigger", result.Trigger, "error", err)
	s.recordRun(ctx, pollrun.Run{
		RunID:           result.RunID,
		Trigger:         pollrun.Trigger(result.Trigger),
		Status:          pollrun.StatusFailed,
		FixturesChecked: result.FixturesChecked,
		ErrorMessage:    result.Error,
		OccurredAt:      result.PolledAt,
	})
	return result
}

func (s *PollService) finishCycle(ctx context.Context, result PollResult, fixtures []fixture.Fixture, reason string) {
	s.fixtureCache.Set(ctx, fixtureWindowCacheKey, fixtures)
	s.rememberNextWindow(fixtures, result.PolledAt)

	s.mu.Lock()
	polledAt := result.PolledAt
	s.lastPoll = &polledAt
	s.liveCount = result.LiveCount
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "poll cycle completed",
		"run_id", result.RunID,
		"trigger", result.Trigger,
		"source", result.Source,
		"fixtures_checked", result.FixturesChecked,
		"fixtures_updated", result.FixturesUpdated,
		"fixtures_finished", result.FixturesFinished,
		"fixtures_failed", result.FixturesFailed,
		"fixtures_scored", result.FixturesScored,
		"scoring_failed", result.ScoringFailed,
		"live_count", result.LiveCount,
	)
	s.recordRun(ctx, pollrun.Run{
		RunID:            result.RunID,
		Trigger:          pollrun.Trigger(result.Trigger),
		Status:           pollrun.StatusCompleted,
		FixturesChecked:  result.FixturesChecked,
		FixturesUpdated:  result.FixturesUpdated,
		FixturesFinished: result.FixturesFinished,
		Reason:           reason,
		OccurredAt:       result.PolledAt,
	})
}

func (s *PollService) recordRun(ctx context.Context, run pollrun.Run) {
	if s.runRepo == nil {
		return
	}
	if run.RunID == "" {
		runID, err := s.ids.NewID()
		if err != nil {
			s.logger.WarnContext(ctx, "generate poll run id failed", "error", err)
			return
		}
		run.RunID = runID
	}
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		run.TraceID = spanCtx.TraceID().String()
		run.SpanID = spanCtx.SpanID().String()
	}
	if err := s.runRepo.UpsertRun(ctx, run); err != nil {
		s.logger.WarnContext(ctx, "record poll run failed", "run_id", run.RunID, "status", string(run.Status), "error", err)
	}
}

func (s *PollService) publish(ctx context.Context, msg broadcast.Message) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "publish live event failed", "event", msg.Type, "error", err)
	}
}

func (s *PollService) loadWindow(ctx context.Context, now time.Time) ([]fixture.Fixture, error) {
	fixtures, err := s.fixtureRepo.ListForWindow(ctx, now.Add(-s.cfg.LookBehind), now.Add(s.cfg.LookAhead))
	if err != nil {
		return nil, err
	}
	return fixtures, nil
}

func (s *PollService) rememberNextWindow(fixtures []fixture.Fixture, now time.Time) {
	var view *PollingWindowView
	if window, ok := fixture.NextPollingWindow(fixtures, now); ok {
		view = &PollingWindowView{FixtureID: window.FixtureID, Start: window.Start.UTC(), End: window.End.UTC()}
	}

	s.mu.Lock()
	s.nextWindow = view
	s.mu.Unlock()
}

func (s *PollService) isActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *PollService) localNow() time.Time {
	return s.now().In(s.cfg.Location)
}

func (s *PollService) nextPollLocked() *time.Time {
	if s.scheduler != nil {
		if next := s.scheduler.Entry(s.entryID).Next; !next.IsZero() {
			return &next
		}
	}
	return copyTime(s.nextPoll)
}

func mergeFixtures(fixtures []fixture.Fixture, updated map[string]fixture.Fixture) []fixture.Fixture {
	out := make([]fixture.Fixture, 0, len(fixtures))
	for _, item := range fixtures {
		if next, ok := updated[item.ID]; ok {
			item = next
		}
		out = append(out, item)
	}
	return out
}

func toLiveFixtures(fixtures []fixture.Fixture) []LiveFixture {
	out := make([]LiveFixture, 0, len(fixtures))
	for _, item := range fixtures {
		out = append(out, LiveFixture{
			ID:        item.ID,
			Gameweek:  item.Gameweek,
			HomeTeam:  item.HomeTeam,
			AwayTeam:  item.AwayTeam,
			KickoffAt: item.KickoffAt,
			Status:    string(item.Status),
			HomeScore: item.HomeScore,
			AwayScore: item.AwayScore,
			Minute:    item.Minute,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// cronLogger adapts the service logger to cron's logger interface.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("poll scheduler: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("poll scheduler: "+msg, append(keysAndValues, "error", err)...)
}
