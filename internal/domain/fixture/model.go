package fixture

import (
	"strings"
	"time"
)

type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusLive      Status = "LIVE"
	StatusFinished  Status = "FINISHED"
	StatusSuspended Status = "SUSPENDED"
	StatusPostponed Status = "POSTPONED"
)

// Fixture is one scheduled match between two teams.
type Fixture struct {
	ID         string
	ExternalID int64
	Gameweek   int
	Season     string
	HomeTeamID string
	AwayTeamID string
	HomeTeam   string
	AwayTeam   string
	KickoffAt  *time.Time
	Status     Status
	HomeScore  *int
	AwayScore  *int
	Minute     *int
	Venue      string
	Referee    string
	UpdatedAt  time.Time
}

// LiveUpdate is the mutable slice of a fixture written by a poll cycle.
type LiveUpdate struct {
	Status    Status
	HomeScore *int
	AwayScore *int
	Minute    *int
}

func (f Fixture) HasKickoff() bool {
	return f.KickoffAt != nil && !f.KickoffAt.IsZero()
}

// Scored reports whether the fixture can be used to award prediction points.
func (f Fixture) Scored() bool {
	return f.Status == StatusFinished && f.HomeScore != nil && f.AwayScore != nil
}

// Apply merges an update into the fixture and reports whether anything changed.
func (f Fixture) Apply(update LiveUpdate) (Fixture, bool) {
	next := f
	next.Status = update.Status
	if next.Status == "" {
		next.Status = f.Status
	}
	next.HomeScore = update.HomeScore
	next.AwayScore = update.AwayScore
	next.Minute = update.Minute

	switch next.Status {
	case StatusScheduled:
		next.HomeScore = nil
		next.AwayScore = nil
		next.Minute = nil
	case StatusLive, StatusFinished:
		if next.HomeScore == nil {
			next.HomeScore = intPtr(0)
		}
		if next.AwayScore == nil {
			next.AwayScore = intPtr(0)
		}
	}
	if next.Status == StatusFinished {
		next.Minute = nil
	}

	changed := next.Status != f.Status ||
		!equalIntPtr(next.HomeScore, f.HomeScore) ||
		!equalIntPtr(next.AwayScore, f.AwayScore) ||
		!equalIntPtr(next.Minute, f.Minute)
	return next, changed
}

// LiveUpdate returns the live-state projection of the fixture.
func (f Fixture) LiveUpdate() LiveUpdate {
	return LiveUpdate{
		Status:    f.Status,
		HomeScore: f.HomeScore,
		AwayScore: f.AwayScore,
		Minute:    f.Minute,
	}
}

// StatusFromProvider maps the provider short status vocabulary to Status.
// TBD is a fixture without a confirmed kickoff time, so it stays scheduled.
// AWD and WO are decided off the pitch and never carry a played score.
// Unknown codes fall back to StatusScheduled.
func StatusFromProvider(code string) Status {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "NS", "TBD":
		return StatusScheduled
	case "1H", "HT", "2H", "ET", "BT", "P", "LIVE":
		return StatusLive
	case "FT", "AET", "PEN":
		return StatusFinished
	case "SUSP", "INT":
		return StatusSuspended
	case "PST", "CANC", "ABD", "AWD", "WO":
		return StatusPostponed
	default:
		return StatusScheduled
	}
}

func ParseStatus(raw string) (Status, bool) {
	switch Status(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusScheduled:
		return StatusScheduled, true
	case StatusLive:
		return StatusLive, true
	case StatusFinished:
		return StatusFinished, true
	case StatusSuspended:
		return StatusSuspended, true
	case StatusPostponed:
		return StatusPostponed, true
	default:
		return "", false
	}
}

func intPtr(v int) *int {
	return &v
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
