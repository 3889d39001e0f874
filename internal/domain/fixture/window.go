package fixture

import (
	"fmt"
	"sort"
	"time"
)

const (
	LiveWindowDuration    = 120 * time.Minute
	PollLeadTime          = 30 * time.Minute
	PollTrailTime         = 150 * time.Minute
	UpcomingKickoffLead   = 30 * time.Minute
	RecentKickoffLookback = 15 * time.Minute
)

// PollingWindow is the span during which a fixture is worth polling.
type PollingWindow struct {
	FixtureID string
	Start     time.Time
	End       time.Time
}

func (w PollingWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

type LiveWindowSummary struct {
	IsLive           bool
	MatchesInWindow  []Fixture
	NextMatchKickoff *time.Time
	AllTodayFinished bool
}

// PollDecision explains the outcome of ShouldPollNow.
type PollDecision struct {
	ShouldPoll    bool
	Reason        string
	LiveCount     int
	UpcomingCount int
	OverdueCount  int
}

// IsInLiveWindow reports whether now falls in [kickoff, kickoff+120m] for an unfinished fixture.
func IsInLiveWindow(f Fixture, now time.Time) bool {
	if !f.HasKickoff() || f.Status == StatusFinished {
		return false
	}
	kickoff := *f.KickoffAt
	return !now.Before(kickoff) && !now.After(kickoff.Add(LiveWindowDuration))
}

func LiveMatches(fixtures []Fixture, now time.Time) []Fixture {
	out := make([]Fixture, 0)
	for _, f := range fixtures {
		if IsInLiveWindow(f, now) {
			out = append(out, f)
		}
	}
	return out
}

// ComputeLiveWindowSummary treats "today" as the calendar day of now in now's location.
func ComputeLiveWindowSummary(fixtures []Fixture, now time.Time) LiveWindowSummary {
	summary := LiveWindowSummary{MatchesInWindow: make([]Fixture, 0)}
	if len(fixtures) == 0 {
		return summary
	}

	todayCount := 0
	todayFinished := 0
	y, m, d := now.Date()
	for _, f := range fixtures {
		if !f.HasKickoff() {
			continue
		}
		kickoff := *f.KickoffAt

		if IsInLiveWindow(f, now) || f.Status == StatusLive {
			summary.MatchesInWindow = append(summary.MatchesInWindow, f)
		}

		if f.Status == StatusScheduled && kickoff.After(now) {
			if summary.NextMatchKickoff == nil || kickoff.Before(*summary.NextMatchKickoff) {
				next := kickoff
				summary.NextMatchKickoff = &next
			}
		}

		ky, km, kd := kickoff.In(now.Location()).Date()
		if ky == y && km == m && kd == d {
			todayCount++
			if f.Status == StatusFinished {
				todayFinished++
			}
		}
	}

	summary.IsLive = len(summary.MatchesInWindow) > 0
	summary.AllTodayFinished = todayCount > 0 && todayCount == todayFinished
	return summary
}

// ShouldPollNow is the polling heuristic: any LIVE fixture, a SCHEDULED kickoff in the
// next 30 minutes, a SCHEDULED fixture still inside its live window after kickoff,
// or a LIVE fixture that kicked off in the last 15 minutes.
func ShouldPollNow(now time.Time, fixtures []Fixture) bool {
	return DecidePoll(now, fixtures).ShouldPoll
}

func DecidePoll(now time.Time, fixtures []Fixture) PollDecision {
	if len(fixtures) == 0 {
		return PollDecision{Reason: "no fixtures"}
	}

	var liveCount, upcomingCount, overdueCount, recentCount int
	for _, f := range fixtures {
		if f.Status == StatusLive {
			liveCount++
		}
		if !f.HasKickoff() {
			continue
		}
		kickoff := *f.KickoffAt
		untilKickoff := kickoff.Sub(now)
		if f.Status == StatusScheduled && untilKickoff >= 0 && untilKickoff <= UpcomingKickoffLead {
			upcomingCount++
		}
		// The provider may lag behind kickoff; keep polling until it reports the match.
		if f.Status == StatusScheduled && untilKickoff < 0 && IsInLiveWindow(f, now) {
			overdueCount++
		}
		sinceKickoff := now.Sub(kickoff)
		if (f.Status == StatusLive || f.Status == StatusFinished) &&
			sinceKickoff >= 0 && sinceKickoff <= RecentKickoffLookback &&
			f.Status == StatusLive {
			recentCount++
		}
	}

	decision := PollDecision{LiveCount: liveCount, UpcomingCount: upcomingCount, OverdueCount: overdueCount}
	switch {
	case liveCount > 0:
		decision.ShouldPoll = true
		decision.Reason = fmt.Sprintf("%d live fixture(s)", liveCount)
	case upcomingCount > 0:
		decision.ShouldPoll = true
		decision.Reason = fmt.Sprintf("%d fixture(s) kicking off within %s", upcomingCount, UpcomingKickoffLead)
	case overdueCount > 0:
		decision.ShouldPoll = true
		decision.Reason = fmt.Sprintf("%d scheduled fixture(s) past kickoff", overdueCount)
	case recentCount > 0:
		decision.ShouldPoll = true
		decision.Reason = fmt.Sprintf("%d fixture(s) kicked off within the last %s", recentCount, RecentKickoffLookback)
	default:
		decision.Reason = "no live or imminent fixtures"
	}
	return decision
}

// ComputePollingWindow returns [kickoff-30m, kickoff+150m]; ok is false without a kickoff.
func ComputePollingWindow(f Fixture) (PollingWindow, bool) {
	if !f.HasKickoff() {
		return PollingWindow{}, false
	}
	kickoff := *f.KickoffAt
	return PollingWindow{
		FixtureID: f.ID,
		Start:     kickoff.Add(-PollLeadTime),
		End:       kickoff.Add(PollTrailTime),
	}, true
}

// NextPollingWindow returns the earliest window that has not ended yet.
func NextPollingWindow(fixtures []Fixture, now time.Time) (PollingWindow, bool) {
	windows := make([]PollingWindow, 0, len(fixtures))
	for _, f := range fixtures {
		if f.Status == StatusFinished || f.Status == StatusPostponed {
			continue
		}
		w, ok := ComputePollingWindow(f)
		if !ok || w.End.Before(now) {
			continue
		}
		windows = append(windows, w)
	}
	if len(windows) == 0 {
		return PollingWindow{}, false
	}
	sort.Slice(windows, func(i, j int) bool {
		return windows[i].Start.Before(windows[j].Start)
	})
	return windows[0], true
}

// PollTargets selects fixtures whose provider state should be fetched now.
func PollTargets(fixtures []Fixture, now time.Time) []Fixture {
	out := make([]Fixture, 0)
	for _, f := range fixtures {
		if f.ExternalID <= 0 {
			continue
		}
		if f.Status == StatusLive || IsInLiveWindow(f, now) {
			out = append(out, f)
			continue
		}
		if f.Status == StatusFinished || f.Status == StatusPostponed {
			continue
		}
		if w, ok := ComputePollingWindow(f); ok && w.Contains(now) {
			out = append(out, f)
		}
	}
	return out
}
