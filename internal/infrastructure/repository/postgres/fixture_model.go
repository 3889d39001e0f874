package postgres

import (
	"database/sql"
	"time"
)

type fixtureTableModel struct {
	ID         int64          `db:"id"`
	PublicID   string         `db:"public_id"`
	ExternalID sql.NullInt64  `db:"external_id"`
	Gameweek   int            `db:"gameweek"`
	Season     string         `db:"season"`
	HomeTeamID sql.NullString `db:"home_team_public_id"`
	AwayTeamID sql.NullString `db:"away_team_public_id"`
	HomeTeam   string         `db:"home_team"`
	AwayTeam   string         `db:"away_team"`
	KickoffAt  sql.NullTime   `db:"kickoff_at"`
	Status     string         `db:"status"`
	HomeScore  sql.NullInt64  `db:"home_score"`
	AwayScore  sql.NullInt64  `db:"away_score"`
	Minute     sql.NullInt64  `db:"minute"`
	Venue      string         `db:"venue"`
	Referee    string         `db:"referee"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
	DeletedAt  *time.Time     `db:"deleted_at"`
}
