package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	"github.com/riskibarqy/score-predictor/internal/domain/pollrun"
	"github.com/riskibarqy/score-predictor/internal/domain/prediction"
	"github.com/riskibarqy/score-predictor/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/score-predictor/internal/platform/broadcast"
	"github.com/riskibarqy/score-predictor/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	mu     sync.Mutex
	states map[int64]ProviderFixtureState
	err    error
	calls  atomic.Int32
}

func (p *stubProvider) FetchLiveStates(_ context.Context, externalIDs []int64) (map[int64]ProviderFixtureState, error) {
	p.calls.Add(1)
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return nil, p.err
	}
	out := make(map[int64]ProviderFixtureState, len(externalIDs))
	for _, externalID := range externalIDs {
		if state, ok := p.states[externalID]; ok {
			out[externalID] = state
		}
	}
	return out, nil
}

func (p *stubProvider) Source() string { return "stub" }

func (p *stubProvider) set(externalID int64, code string, home, away int, minute *int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.states == nil {
		p.states = make(map[int64]ProviderFixtureState)
	}
	p.states[externalID] = ProviderFixtureState{
		ExternalID: externalID,
		StatusCode: code,
		Update: fixture.LiveUpdate{
			Status:    fixture.StatusFromProvider(code),
			HomeScore: &home,
			AwayScore: &away,
			Minute:    minute,
		},
	}
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// flakyPredictionRepository fails ListSubmittedByFixture for the first failures calls.
type flakyPredictionRepository struct {
	prediction.Repository
	failures atomic.Int32
}

func (r *flakyPredictionRepository) ListSubmittedByFixture(ctx context.Context, fixtureID string) ([]prediction.Prediction, error) {
	if r.failures.Add(-1) >= 0 {
		return nil, errors.New("connection reset by peer")
	}
	return r.Repository.ListSubmittedByFixture(ctx, fixtureID)
}

type failingUpdateFixtureRepository struct {
	fixture.Repository
	failID string
}

func (r failingUpdateFixtureRepository) UpdateLiveState(ctx context.Context, fixtureID string, update fixture.LiveUpdate) error {
	if fixtureID == r.failID {
		return errors.New("deadlock detected")
	}
	return r.Repository.UpdateLiveState(ctx, fixtureID, update)
}

type pollDeps struct {
	fixtureRepo    fixture.Repository
	predictionRepo prediction.Repository
}

type pollOption func(*pollDeps)

func withFixtureRepo(wrap func(fixture.Repository) fixture.Repository) pollOption {
	return func(d *pollDeps) { d.fixtureRepo = wrap(d.fixtureRepo) }
}

func withPredictionRepo(wrap func(prediction.Repository) prediction.Repository) pollOption {
	return func(d *pollDeps) { d.predictionRepo = wrap(d.predictionRepo) }
}

type pollFixture struct {
	service     *PollService
	provider    *stubProvider
	fixtures    *memory.FixtureRepository
	predictions *memory.PredictionRepository
	stats       *memory.UserStatsRepository
	runs        *memory.PollRunRepository
	broadcaster *broadcast.Broadcaster
	clock       *testClock
	now         time.Time
}

func newPollFixture(t *testing.T, fixtures []fixture.Fixture, predictions []prediction.Prediction, opts ...pollOption) *pollFixture {
	t.Helper()

	now := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
	clock := &testClock{now: now}
	logger := logging.NewNop()
	fixtureRepo := memory.NewFixtureRepository(fixtures)
	predictionRepo := memory.NewPredictionRepository(predictions)
	statsRepo := memory.NewUserStatsRepository()
	runRepo := memory.NewPollRunRepository()
	broadcaster := broadcast.NewBroadcaster(logger)
	provider := &stubProvider{}

	deps := pollDeps{fixtureRepo: fixtureRepo, predictionRepo: predictionRepo}
	for _, opt := range opts {
		opt(&deps)
	}

	scoring := NewScoringService(deps.fixtureRepo, deps.predictionRepo, statsRepo, 2, logger)
	scoring.now = clock.Now
	service := NewPollService(deps.fixtureRepo, runRepo, provider, scoring, broadcaster, nil, PollServiceConfig{
		Interval:     time.Hour,
		FetchTimeout: time.Second,
		Workers:      2,
	}, logger)
	service.now = clock.Now
	t.Cleanup(func() { service.Stop() })

	return &pollFixture{
		service:     service,
		provider:    provider,
		fixtures:    fixtureRepo,
		predictions: predictionRepo,
		stats:       statsRepo,
		runs:        runRepo,
		broadcaster: broadcaster,
		clock:       clock,
		now:         now,
	}
}

func liveFixtureAt(now time.Time) fixture.Fixture {
	kickoff := now.Add(-80 * time.Minute)
	home, away, minute := 1, 0, 80
	return fixture.Fixture{
		ID:         "fx-live",
		ExternalID: 9001,
		HomeTeam:   "Persija Jakarta",
		AwayTeam:   "Persib Bandung",
		KickoffAt:  &kickoff,
		Status:     fixture.StatusLive,
		HomeScore:  &home,
		AwayScore:  &away,
		Minute:     &minute,
	}
}

func livePredictions() []prediction.Prediction {
	return []prediction.Prediction{
		{ID: "p1", FixtureID: "fx-live", UserID: "u1", PredictedHome: 2, PredictedAway: 0, IsSubmitted: true},
		{ID: "p2", FixtureID: "fx-live", UserID: "u2", PredictedHome: 3, PredictedAway: 1, IsSubmitted: true},
		{ID: "p3", FixtureID: "fx-live", UserID: "u3", PredictedHome: 0, PredictedAway: 1, IsSubmitted: false},
	}
}

func TestPollService_InitialStatus(t *testing.T) {
	t.Parallel()

	f := newPollFixture(t, nil, nil)
	status := f.service.Status()
	assert.False(t, status.IsActive)
	assert.Equal(t, PollStateStopped, status.State)
	assert.Nil(t, status.LastPoll)
	assert.Nil(t, status.NextPoll)
	assert.Equal(t, 0, status.CurrentlyLiveCount)
	assert.Nil(t, status.NextPollingWindow)
}

func TestPollService_StatusReportsNextPollingWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
	upcomingKickoff := now.Add(3 * time.Hour)
	upcoming := fixture.Fixture{ID: "fx-later", ExternalID: 9010, HomeTeam: "Arema", AwayTeam: "Bali United", KickoffAt: &upcomingKickoff, Status: fixture.StatusScheduled}
	f := newPollFixture(t, []fixture.Fixture{upcoming, liveFixtureAt(now)}, nil)

	result := f.service.ForcePoll(context.Background(), pollrun.TriggerManual)
	require.True(t, result.Success, result.Error)

	window := f.service.Status().NextPollingWindow
	require.NotNil(t, window)
	assert.Equal(t, "fx-live", window.FixtureID)
	assert.True(t, window.Start.Equal(now.Add(-110*time.Minute)), "start=%s", window.Start)
	assert.True(t, window.End.Equal(now.Add(70*time.Minute)), "end=%s", window.End)

	f.provider.set(9001, "FT", 1, 0, nil)
	result = f.service.ForcePoll(context.Background(), pollrun.TriggerManual)
	require.True(t, result.Success, result.Error)

	window = f.service.Status().NextPollingWindow
	require.NotNil(t, window)
	assert.Equal(t, "fx-later", window.FixtureID)
}

func TestPollService_StartStopAreIdempotent(t *testing.T) {
	t.Parallel()

	f := newPollFixture(t, nil, nil)
	ctx := context.Background()

	require.True(t, f.service.Start(ctx))
	require.False(t, f.service.Start(ctx), "second start must not register another job")

	status := f.service.Status()
	assert.True(t, status.IsActive)
	assert.Equal(t, PollStateActive, status.State)
	require.NotNil(t, status.NextPoll)
	require.NotNil(t, status.LastPoll, "start runs an immediate cycle")

	require.True(t, f.service.Stop())
	require.False(t, f.service.Stop())

	status = f.service.Status()
	assert.False(t, status.IsActive)
	assert.Nil(t, status.NextPoll)
	assert.NotNil(t, status.LastPoll, "stop keeps the last poll time")
}

func TestPollService_RestartKeepsSingleJob(t *testing.T) {
	t.Parallel()

	f := newPollFixture(t, nil, nil)
	ctx := context.Background()

	require.True(t, f.service.Restart(ctx))
	require.True(t, f.service.Restart(ctx))
	assert.True(t, f.service.Status().IsActive)

	f.service.mu.Lock()
	entries := len(f.service.scheduler.Entries())
	f.service.mu.Unlock()
	assert.Equal(t, 1, entries)
}

func TestPollService_ForcePoll_FinishScoresOnce(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
	f := newPollFixture(t, []fixture.Fixture{liveFixtureAt(now)}, livePredictions())
	ctx := context.Background()

	sub := broadcast.NewChannelSubscriber(4)
	f.broadcaster.Add("client-1", sub)

	f.provider.set(9001, "FT", 2, 0, nil)
	result := f.service.ForcePoll(ctx, pollrun.TriggerManual)
	require.True(t, result.Success, result.Error)
	assert.Equal(t, 1, result.FixturesChecked)
	assert.Equal(t, 1, result.FixturesUpdated)
	assert.Equal(t, 1, result.FixturesFinished)
	assert.Equal(t, "stub", result.Source)

	stored, ok, err := f.fixtures.GetByID(ctx, "fx-live")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fixture.StatusFinished, stored.Status)
	assert.Nil(t, stored.Minute)

	u1, ok, err := f.stats.GetByUser(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, u1.TotalPoints)

	u2, _, _ := f.stats.GetByUser(ctx, "u2")
	assert.Equal(t, 3, u2.TotalPoints)

	_, ok, _ = f.stats.GetByUser(ctx, "u3")
	assert.False(t, ok, "unsubmitted predictions are never scored")

	msg := <-sub.Messages()
	assert.Equal(t, broadcast.EventUpdate, msg.Type)

	again := f.service.ForcePoll(ctx, pollrun.TriggerManual)
	require.True(t, again.Success)
	assert.Equal(t, 0, again.FixturesFinished)

	u1, _, _ = f.stats.GetByUser(ctx, "u1")
	assert.Equal(t, 5, u1.TotalPoints, "points must not be awarded twice")
}

func TestPollService_ForcePoll_RetriesScoringAfterFailure(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
	flaky := &flakyPredictionRepository{}
	flaky.failures.Store(1)
	f := newPollFixture(t, []fixture.Fixture{liveFixtureAt(now)}, livePredictions(),
		withPredictionRepo(func(repo prediction.Repository) prediction.Repository {
			flaky.Repository = repo
			return flaky
		}),
	)
	ctx := context.Background()
	f.provider.set(9001, "FT", 2, 0, nil)

	first := f.service.ForcePoll(ctx, pollrun.TriggerManual)
	require.True(t, first.Success, first.Error)
	assert.Equal(t, 1, first.FixturesFinished)
	assert.Equal(t, 0, first.FixturesScored)
	assert.Equal(t, 1, first.ScoringFailed)

	_, ok, err := f.stats.GetByUser(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	second := f.service.ForcePoll(ctx, pollrun.TriggerManual)
	require.True(t, second.Success, second.Error)
	assert.Equal(t, 0, second.FixturesChecked, "finished fixtures are not polled again")
	assert.Equal(t, 1, second.FixturesScored)
	assert.Equal(t, 0, second.ScoringFailed)

	f.clock.Advance(15 * time.Minute)
	third := f.service.ForcePoll(ctx, pollrun.TriggerManual)
	require.True(t, third.Success, third.Error)
	assert.Equal(t, 0, third.FixturesScored, "fully scored fixtures are left alone")

	u1, ok, err := f.stats.GetByUser(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, u1.TotalPoints)
	assert.Equal(t, 1, u1.ScoredPredictions)

	pending, err := f.predictions.ListUnscoredSubmittedByFixture(ctx, "fx-live")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPollService_ForcePoll_UpdateFailureKeepsOtherFixtures(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
	other := liveFixtureAt(now)
	other.ID = "fx-other"
	other.ExternalID = 9002
	other.HomeTeam = "Bali United"
	other.AwayTeam = "Arema"

	f := newPollFixture(t, []fixture.Fixture{liveFixtureAt(now), other}, nil,
		withFixtureRepo(func(repo fixture.Repository) fixture.Repository {
			return failingUpdateFixtureRepository{Repository: repo, failID: "fx-other"}
		}),
	)
	ctx := context.Background()
	sub := broadcast.NewChannelSubscriber(4)
	f.broadcaster.Add("client-1", sub)

	minute := 85
	f.provider.set(9001, "2H", 2, 0, &minute)
	f.provider.set(9002, "2H", 1, 1, &minute)

	result := f.service.ForcePoll(ctx, pollrun.TriggerManual)
	require.True(t, result.Success, result.Error)
	assert.Equal(t, 2, result.FixturesChecked)
	assert.Equal(t, 1, result.FixturesUpdated)
	assert.Equal(t, 1, result.FixturesFailed)

	stored, ok, err := f.fixtures.GetByID(ctx, "fx-live")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, stored.HomeScore)
	assert.Equal(t, 2, *stored.HomeScore)

	untouched, _, _ := f.fixtures.GetByID(ctx, "fx-other")
	require.NotNil(t, untouched.HomeScore)
	assert.Equal(t, 1, *untouched.HomeScore)
	assert.Equal(t, 0, *untouched.AwayScore)

	msg := <-sub.Messages()
	assert.Equal(t, broadcast.EventUpdate, msg.Type)
	payload, ok := msg.Data.(LiveUpdatePayload)
	require.True(t, ok)
	require.Len(t, payload.Fixtures, 2)
	assert.Equal(t, "fx-live", payload.Fixtures[0].ID)
	require.NotNil(t, payload.Fixtures[0].HomeScore)
	assert.Equal(t, 2, *payload.Fixtures[0].HomeScore)
}

func TestPollService_ConcurrentForcePoll(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
	f := newPollFixture(t, []fixture.Fixture{liveFixtureAt(now)}, livePredictions())
	f.provider.set(9001, "FT", 2, 0, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.service.ForcePoll(context.Background(), pollrun.TriggerManual)
		}()
	}
	wg.Wait()

	u1, ok, err := f.stats.GetByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, u1.TotalPoints)
	assert.Equal(t, 1, u1.ScoredPredictions)
}

func TestPollService_ProviderFailureKeepsSchedulerActive(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
	f := newPollFixture(t, []fixture.Fixture{liveFixtureAt(now)}, nil)
	f.provider.err = errors.New("upstream 503")

	require.True(t, f.service.Start(context.Background()))

	result := f.service.ForcePoll(context.Background(), pollrun.TriggerManual)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "upstream 503")
	assert.True(t, f.service.Status().IsActive)

	stored, _, _ := f.fixtures.GetByID(context.Background(), "fx-live")
	assert.Equal(t, fixture.StatusLive, stored.Status)

	runs := f.runs.List()
	require.NotEmpty(t, runs)
	assert.Equal(t, pollrun.StatusFailed, runs[len(runs)-1].Status)
}

func TestPollService_ForcePoll_NoTargets(t *testing.T) {
	t.Parallel()

	f := newPollFixture(t, nil, nil)
	result := f.service.ForcePoll(context.Background(), pollrun.TriggerManual)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.FixturesChecked)
	assert.EqualValues(t, 0, f.provider.calls.Load(), "provider is not called without targets")
	assert.NotNil(t, f.service.Status().LastPoll)
}

func TestPollService_ForcePoll_UnchangedStateIsNotWritten(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
	f := newPollFixture(t, []fixture.Fixture{liveFixtureAt(now)}, nil)
	minute := 80
	f.provider.set(9001, "2H", 1, 0, &minute)

	result := f.service.ForcePoll(context.Background(), pollrun.TriggerManual)
	require.True(t, result.Success)
	assert.Equal(t, 0, result.FixturesUpdated)
	assert.Equal(t, 1, result.LiveCount)
	assert.Equal(t, 1, f.service.Status().CurrentlyLiveCount)
}

func TestPollService_LiveWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
	upcomingKickoff := now.Add(3 * time.Hour)
	upcoming := fixture.Fixture{ID: "fx-later", HomeTeam: "Arema", AwayTeam: "Bali United", KickoffAt: &upcomingKickoff, Status: fixture.StatusScheduled}
	f := newPollFixture(t, []fixture.Fixture{liveFixtureAt(now), upcoming}, nil)

	view, err := f.service.LiveWindow(context.Background())
	require.NoError(t, err)
	assert.True(t, view.IsLive)
	assert.Equal(t, 1, view.LiveCount)
	require.Len(t, view.MatchesInWindow, 1)
	assert.Equal(t, "fx-live", view.MatchesInWindow[0].ID)
	assert.Equal(t, "LIVE", view.MatchesInWindow[0].Status)
	require.Len(t, view.Fixtures, 2)
	require.NotNil(t, view.NextMatchKickoff)
	assert.True(t, view.NextMatchKickoff.Equal(upcomingKickoff))
	assert.False(t, view.AllTodayFinished)
}

func TestPollService_SmartStart(t *testing.T) {
	t.Parallel()

	t.Run("no fixtures keeps scheduler stopped", func(t *testing.T) {
		t.Parallel()

		f := newPollFixture(t, nil, nil)
		got, err := f.service.SmartStart(context.Background())
		require.NoError(t, err)
		assert.False(t, got.ShouldPoll)
		assert.Equal(t, "unchanged", got.Action)
		assert.False(t, got.Status.IsActive)
	})

	t.Run("live fixture starts scheduler", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
		f := newPollFixture(t, []fixture.Fixture{liveFixtureAt(now)}, nil)
		got, err := f.service.SmartStart(context.Background())
		require.NoError(t, err)
		assert.True(t, got.ShouldPoll)
		assert.Equal(t, "started", got.Action)
		assert.True(t, got.Status.IsActive)

		again, err := f.service.SmartStart(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "unchanged", again.Action)
	})

	t.Run("scheduled fixture past kickoff starts scheduler", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
		kickoff := now.Add(-5 * time.Minute)
		late := fixture.Fixture{ID: "fx-late", ExternalID: 9003, HomeTeam: "PSM Makassar", AwayTeam: "Persebaya", KickoffAt: &kickoff, Status: fixture.StatusScheduled}
		f := newPollFixture(t, []fixture.Fixture{late}, nil)
		minute := 5
		f.provider.set(9003, "1H", 0, 0, &minute)

		got, err := f.service.SmartStart(context.Background())
		require.NoError(t, err)
		assert.True(t, got.ShouldPoll)
		assert.Equal(t, "started", got.Action)

		stored, _, _ := f.fixtures.GetByID(context.Background(), "fx-late")
		assert.Equal(t, fixture.StatusLive, stored.Status)
	})

	t.Run("idle window stops active scheduler", func(t *testing.T) {
		t.Parallel()

		f := newPollFixture(t, nil, nil)
		require.True(t, f.service.Start(context.Background()))

		got, err := f.service.SmartStart(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "stopped", got.Action)
		assert.False(t, f.service.Status().IsActive)
	})
}

func TestCronTriggerService_Tick(t *testing.T) {
	t.Parallel()

	t.Run("skips without live or imminent fixtures", func(t *testing.T) {
		t.Parallel()

		f := newPollFixture(t, nil, nil)
		cronService := NewCronTriggerService(f.fixtures, f.service, logging.NewNop())
		cronService.now = func() time.Time { return f.now }

		got, err := cronService.Tick(context.Background())
		require.NoError(t, err)
		assert.Equal(t, CronActionSkipped, got.Action)
		assert.Equal(t, "no fixtures", got.Reason)
		assert.Nil(t, got.Details)

		runs := f.runs.List()
		require.Len(t, runs, 1)
		assert.Equal(t, pollrun.StatusSkipped, runs[0].Status)
		assert.Equal(t, pollrun.TriggerCron, runs[0].Trigger)
	})

	t.Run("polls when a fixture is live", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
		f := newPollFixture(t, []fixture.Fixture{liveFixtureAt(now)}, livePredictions())
		f.provider.set(9001, "FT", 1, 0, nil)
		cronService := NewCronTriggerService(f.fixtures, f.service, logging.NewNop())
		cronService.now = func() time.Time { return now }

		got, err := cronService.Tick(context.Background())
		require.NoError(t, err)
		assert.Equal(t, CronActionPolled, got.Action)
		require.NotNil(t, got.Details)
		assert.True(t, got.Details.Success)
		assert.Equal(t, 1, got.Details.FixturesFinished)
		assert.False(t, f.service.Status().IsActive, "cron tick does not start the in-process timer")
	})

	t.Run("skipped tick scores finished fixtures left unscored", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
		finished := liveFixtureAt(now)
		kickoff := now.Add(-3 * time.Hour)
		home, away := 2, 0
		finished.KickoffAt = &kickoff
		finished.Status = fixture.StatusFinished
		finished.HomeScore = &home
		finished.AwayScore = &away
		finished.Minute = nil

		f := newPollFixture(t, []fixture.Fixture{finished}, livePredictions())
		cronService := NewCronTriggerService(f.fixtures, f.service, logging.NewNop())
		cronService.now = func() time.Time { return now }

		got, err := cronService.Tick(context.Background())
		require.NoError(t, err)
		assert.Equal(t, CronActionSkipped, got.Action)
		assert.EqualValues(t, 0, f.provider.calls.Load())

		u1, ok, err := f.stats.GetByUser(context.Background(), "u1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 5, u1.TotalPoints)
	})
}
