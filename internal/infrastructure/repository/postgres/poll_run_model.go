package postgres

import "time"

type pollRunTableModel struct {
	RunID            string    `db:"run_id"`
	Trigger          string    `db:"trigger_source"`
	Status           string    `db:"status"`
	FixturesChecked  int       `db:"fixtures_checked"`
	FixturesUpdated  int       `db:"fixtures_updated"`
	FixturesFinished int       `db:"fixtures_finished"`
	Reason           *string   `db:"reason"`
	ErrorMessage     *string   `db:"error_message"`
	OccurredAt       time.Time `db:"occurred_at"`
	TraceID          *string   `db:"trace_id"`
	SpanID           *string   `db:"span_id"`
}
