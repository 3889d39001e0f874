package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/score-predictor/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the demo match day into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, now time.Time) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM fixtures WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count fixtures for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, f := range memory.SeedFixtures(now) {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO fixtures (
	public_id, external_id, gameweek, season, home_team_public_id, away_team_public_id,
	home_team, away_team, kickoff_at, status, home_score, away_score, minute, venue
)
VALUES (
	:public_id, :external_id, :gameweek, :season, :home_team_public_id, :away_team_public_id,
	:home_team, :away_team, :kickoff_at, :status, :home_score, :away_score, :minute, :venue
)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":           f.ID,
			"external_id":         f.ExternalID,
			"gameweek":            f.Gameweek,
			"season":              f.Season,
			"home_team_public_id": f.HomeTeamID,
			"away_team_public_id": f.AwayTeamID,
			"home_team":           f.HomeTeam,
			"away_team":           f.AwayTeam,
			"kickoff_at":          f.KickoffAt,
			"status":              string(f.Status),
			"home_score":          f.HomeScore,
			"away_score":          f.AwayScore,
			"minute":              f.Minute,
			"venue":               f.Venue,
		})
		if err != nil {
			return fmt.Errorf("bind seed fixture %s query: %w", f.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed fixture %s: %w", f.ID, err)
		}
	}

	for _, p := range memory.SeedPredictions() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO predictions (public_id, fixture_public_id, user_id, predicted_home, predicted_away, is_submitted)
VALUES (:public_id, :fixture_public_id, :user_id, :predicted_home, :predicted_away, :is_submitted)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":         p.ID,
			"fixture_public_id": p.FixtureID,
			"user_id":           p.UserID,
			"predicted_home":    p.PredictedHome,
			"predicted_away":    p.PredictedAway,
			"is_submitted":      p.IsSubmitted,
		})
		if err != nil {
			return fmt.Errorf("bind seed prediction %s query: %w", p.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed prediction %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
