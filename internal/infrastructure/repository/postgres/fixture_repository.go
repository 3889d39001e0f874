package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	qb "github.com/riskibarqy/score-predictor/internal/platform/querybuilder"
)

var fixtureColumns = []string{
	"id", "public_id", "external_id", "gameweek", "season",
	"home_team_public_id", "away_team_public_id", "home_team", "away_team",
	"kickoff_at", "status", "home_score", "away_score", "minute",
	"venue", "referee", "created_at", "updated_at", "deleted_at",
}

type FixtureRepository struct {
	db *sqlx.DB
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func (r *FixtureRepository) ListForWindow(ctx context.Context, from, to time.Time) ([]fixture.Fixture, error) {
	query, args, err := qb.Select(fixtureColumns...).From("fixtures").
		Where(
			qb.IsNull("deleted_at"),
			qb.Or(
				qb.And(qb.Gte("kickoff_at", from.UTC()), qb.Lte("kickoff_at", to.UTC())),
				qb.Eq("status", string(fixture.StatusLive)),
			),
		).
		OrderBy("kickoff_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select fixtures for window query: %w", err)
	}

	var rows []fixtureTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select fixtures for window: %w", err)
	}

	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		out = append(out, fixtureFromRow(row))
	}
	return out, nil
}

func (r *FixtureRepository) GetByID(ctx context.Context, fixtureID string) (fixture.Fixture, bool, error) {
	query, args, err := qb.Select(fixtureColumns...).From("fixtures").
		Where(
			qb.Eq("public_id", fixtureID),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return fixture.Fixture{}, false, fmt.Errorf("build select fixture by id query: %w", err)
	}

	var row fixtureTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return fixture.Fixture{}, false, nil
		}
		return fixture.Fixture{}, false, fmt.Errorf("select fixture by id: %w", err)
	}
	return fixtureFromRow(row), true, nil
}

func (r *FixtureRepository) UpdateLiveState(ctx context.Context, fixtureID string, update fixture.LiveUpdate) error {
	query, args, err := qb.Update("fixtures").
		Set("status", string(update.Status)).
		Set("home_score", update.HomeScore).
		Set("away_score", update.AwayScore).
		Set("minute", update.Minute).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", fixtureID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update fixture live state query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update fixture live state: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("fixture=%s not found", fixtureID)
	}
	return nil
}

func fixtureFromRow(row fixtureTableModel) fixture.Fixture {
	item := fixture.Fixture{
		ID:         row.PublicID,
		ExternalID: row.ExternalID.Int64,
		Gameweek:   row.Gameweek,
		Season:     row.Season,
		HomeTeamID: row.HomeTeamID.String,
		AwayTeamID: row.AwayTeamID.String,
		HomeTeam:   row.HomeTeam,
		AwayTeam:   row.AwayTeam,
		KickoffAt:  nullTimeToPtr(row.KickoffAt),
		HomeScore:  nullInt64ToIntPtr(row.HomeScore),
		AwayScore:  nullInt64ToIntPtr(row.AwayScore),
		Minute:     nullInt64ToIntPtr(row.Minute),
		Venue:      row.Venue,
		Referee:    row.Referee,
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
	if status, ok := fixture.ParseStatus(row.Status); ok {
		item.Status = status
	} else {
		item.Status = fixture.StatusScheduled
	}
	return item
}
