package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	"github.com/riskibarqy/score-predictor/internal/domain/prediction"
	"github.com/riskibarqy/score-predictor/internal/domain/userstats"
	"github.com/riskibarqy/score-predictor/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const defaultScoringWorkers = 4

type ScoringService struct {
	fixtureRepo    fixture.Repository
	predictionRepo prediction.Repository
	statsRepo      userstats.Repository
	workers        int
	logger         *logging.Logger
	now            func() time.Time
}

type ScoreFixtureResult struct {
	FixtureID         string `json:"fixtureId"`
	Skipped           bool   `json:"skipped"`
	Reason            string `json:"reason,omitempty"`
	PredictionsScored int    `json:"predictionsScored"`
	UsersUpdated      int    `json:"usersUpdated"`
}

func NewScoringService(
	fixtureRepo fixture.Repository,
	predictionRepo prediction.Repository,
	statsRepo userstats.Repository,
	workers int,
	logger *logging.Logger,
) *ScoringService {
	if workers < 1 {
		workers = defaultScoringWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ScoringService{
		fixtureRepo:    fixtureRepo,
		predictionRepo: predictionRepo,
		statsRepo:      statsRepo,
		workers:        workers,
		logger:         logger,
		now:            time.Now,
	}
}

// ScoreFixture awards points for every submitted prediction of a finished fixture
// and recomputes the stats of each affected user. Running it twice yields the same state.
func (s *ScoringService) ScoreFixture(ctx context.Context, item fixture.Fixture) (ScoreFixtureResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ScoreFixture")
	defer span.End()

	result := ScoreFixtureResult{FixtureID: item.ID}
	if !item.Scored() {
		result.Skipped = true
		result.Reason = fmt.Sprintf("fixture status %s has no final score", item.Status)
		return result, nil
	}

	predictions, err := s.predictionRepo.ListSubmittedByFixture(ctx, item.ID)
	if err != nil {
		return result, fmt.Errorf("list submitted predictions for fixture=%s: %w", item.ID, err)
	}

	scoredAt := s.now().UTC()
	users := make(map[string]struct{}, len(predictions))
	for _, p := range predictions {
		if !p.IsSubmitted {
			continue
		}
		outcome := prediction.CalculatePoints(p.PredictedHome, p.PredictedAway, *item.HomeScore, *item.AwayScore)
		users[p.UserID] = struct{}{}
		if alreadyScored(p, outcome) {
			continue
		}
		if err := s.predictionRepo.SaveScore(ctx, p.ID, outcome, scoredAt); err != nil {
			return result, fmt.Errorf("save score prediction=%s: %w", p.ID, err)
		}
		result.PredictionsScored++
	}

	userIDs := make([]string, 0, len(users))
	for userID := range users {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	if err := s.recomputeUsers(ctx, userIDs); err != nil {
		return result, err
	}
	result.UsersUpdated = len(userIDs)

	s.logger.InfoContext(ctx, "fixture scored",
		"fixture_id", item.ID,
		"home_score", *item.HomeScore,
		"away_score", *item.AwayScore,
		"predictions_scored", result.PredictionsScored,
		"users_updated", result.UsersUpdated,
	)
	return result, nil
}

// PendingCount returns how many submitted predictions of a fixture have no score yet.
func (s *ScoringService) PendingCount(ctx context.Context, fixtureID string) (int, error) {
	pending, err := s.predictionRepo.ListUnscoredSubmittedByFixture(ctx, fixtureID)
	if err != nil {
		return 0, fmt.Errorf("list unscored predictions for fixture=%s: %w", fixtureID, err)
	}
	return len(pending), nil
}

// RescoreFixture clears stored scores and scores the fixture again from its persisted state.
func (s *ScoringService) RescoreFixture(ctx context.Context, fixtureID string) (ScoreFixtureResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.RescoreFixture")
	defer span.End()

	fixtureID = strings.TrimSpace(fixtureID)
	if fixtureID == "" {
		return ScoreFixtureResult{}, fmt.Errorf("%w: fixture id is required", ErrInvalidInput)
	}

	item, ok, err := s.fixtureRepo.GetByID(ctx, fixtureID)
	if err != nil {
		return ScoreFixtureResult{}, fmt.Errorf("get fixture=%s: %w", fixtureID, err)
	}
	if !ok {
		return ScoreFixtureResult{}, fmt.Errorf("%w: fixture=%s", ErrFixtureNotFound, fixtureID)
	}
	if !item.Scored() {
		return ScoreFixtureResult{}, fmt.Errorf("%w: fixture=%s status=%s", ErrFixtureNotFinished, fixtureID, item.Status)
	}

	if err := s.predictionRepo.ResetScoresByFixture(ctx, fixtureID); err != nil {
		return ScoreFixtureResult{}, fmt.Errorf("reset scores fixture=%s: %w", fixtureID, err)
	}
	return s.ScoreFixture(ctx, item)
}

func (s *ScoringService) recomputeUsers(ctx context.Context, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}

	p := pool.New().WithMaxGoroutines(s.workers).WithContext(ctx)
	for _, userID := range userIDs {
		userID := userID
		p.Go(func(ctx context.Context) error {
			return s.recomputeUser(ctx, userID)
		})
	}
	return p.Wait()
}

func (s *ScoringService) recomputeUser(ctx context.Context, userID string) error {
	scored, err := s.predictionRepo.ListScoredByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list scored predictions user=%s: %w", userID, err)
	}
	stats := userstats.Compute(userID, scored, s.now().UTC())
	if err := s.statsRepo.Upsert(ctx, stats); err != nil {
		return fmt.Errorf("upsert stats user=%s: %w", userID, err)
	}
	return nil
}

func alreadyScored(p prediction.Prediction, outcome prediction.Result) bool {
	if !p.IsScored() {
		return false
	}
	return *p.Points == outcome.Points && *p.IsCorrect == outcome.IsCorrect && p.Category == outcome.Category
}
