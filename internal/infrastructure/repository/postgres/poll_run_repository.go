package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/score-predictor/internal/domain/pollrun"
	qb "github.com/riskibarqy/score-predictor/internal/platform/querybuilder"
)

type PollRunRepository struct {
	db *sqlx.DB
}

func NewPollRunRepository(db *sqlx.DB) *PollRunRepository {
	return &PollRunRepository{db: db}
}

func (r *PollRunRepository) UpsertRun(ctx context.Context, run pollrun.Run) error {
	runID := strings.TrimSpace(run.RunID)
	if runID == "" {
		return fmt.Errorf("poll run id is required")
	}

	occurredAt := run.OccurredAt.UTC()
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	model := pollRunTableModel{
		RunID:            runID,
		Trigger:          string(run.Trigger),
		Status:           string(run.Status),
		FixturesChecked:  run.FixturesChecked,
		FixturesUpdated:  run.FixturesUpdated,
		FixturesFinished: run.FixturesFinished,
		Reason:           optionalString(run.Reason),
		ErrorMessage:     optionalString(run.ErrorMessage),
		OccurredAt:       occurredAt,
		TraceID:          optionalString(run.TraceID),
		SpanID:           optionalString(run.SpanID),
	}

	query, args, err := qb.UpsertModel("poll_runs", model, "run_id")
	if err != nil {
		return fmt.Errorf("build upsert poll run query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert poll run=%s: %w", runID, err)
	}
	return nil
}
