package pollrun

import "time"

type Trigger string

const (
	TriggerTimer      Trigger = "timer"
	TriggerManual     Trigger = "manual"
	TriggerCron       Trigger = "cron"
	TriggerSmartStart Trigger = "smart-start"
)

type Status string

const (
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Run is the audit record of one poll cycle or skipped trigger.
type Run struct {
	RunID            string
	Trigger          Trigger
	Status           Status
	FixturesChecked  int
	FixturesUpdated  int
	FixturesFinished int
	Reason           string
	ErrorMessage     string
	OccurredAt       time.Time
	TraceID          string
	SpanID           string
}
