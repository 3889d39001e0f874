package postgres

import (
	"database/sql"
	"time"
)

type predictionTableModel struct {
	ID            int64          `db:"id"`
	PublicID      string         `db:"public_id"`
	FixtureID     string         `db:"fixture_public_id"`
	UserID        string         `db:"user_id"`
	PredictedHome int            `db:"predicted_home"`
	PredictedAway int            `db:"predicted_away"`
	IsSubmitted   bool           `db:"is_submitted"`
	Points        sql.NullInt64  `db:"points"`
	IsCorrect     sql.NullBool   `db:"is_correct"`
	Category      sql.NullString `db:"category"`
	ScoredAt      sql.NullTime   `db:"scored_at"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
	DeletedAt     *time.Time     `db:"deleted_at"`
}
