package sportmonks

import (
	"strconv"
	"strings"
)

type fixturesEnvelope struct {
	Data []fixtureDetails `json:"data"`
}

type fixtureDetails struct {
	ID           int64                `json:"id"`
	StartingAt   string               `json:"starting_at"`
	StateID      int64                `json:"state_id"`
	ResultInfo   string               `json:"result_info"`
	Participants []fixtureParticipant `json:"participants"`
	Scores       []fixtureScoreItem   `json:"scores"`
	Periods      []fixturePeriod      `json:"periods"`
}

type fixtureParticipant struct {
	ID   int64                  `json:"id"`
	Name string                 `json:"name"`
	Meta fixtureParticipantMeta `json:"meta"`
}

type fixtureParticipantMeta struct {
	Location string `json:"location"`
}

type fixturePeriod struct {
	Description string `json:"description"`
	Ticking     bool   `json:"ticking"`
	Minutes     *int   `json:"minutes"`
}

type fixtureScoreItem struct {
	ParticipantID int64          `json:"participant_id"`
	Description   string         `json:"description"`
	Score         scoreValue     `json:"score"`
	Data          map[string]any `json:"data"`
	Goals         any            `json:"goals"`
}

// scoreValue is the nested {"goals": n, "participant": "home"} object.
type scoreValue map[string]any

func (s scoreValue) participantFor(homeID, awayID int64) int64 {
	switch strings.ToLower(strings.TrimSpace(asString(s["participant"]))) {
	case "home":
		return homeID
	case "away":
		return awayID
	default:
		return 0
	}
}

func (f fixtureScoreItem) numericScore() (int, bool) {
	for _, candidate := range []any{
		f.Goals,
		lookupMapValue(f.Score, "goals"),
		lookupMapValue(f.Score, "score"),
		lookupMapValue(f.Data, "goals"),
		lookupMapValue(f.Data, "value"),
	} {
		if candidate == nil {
			continue
		}
		if score, ok := asInt(candidate); ok && score >= 0 {
			return score, true
		}
	}
	return 0, false
}

func lookupMapValue(src map[string]any, key string) any {
	if src == nil {
		return nil
	}
	return src[key]
}

func asInt(value any) (int, bool) {
	switch typed := value.(type) {
	case float64:
		return int(typed), true
	case int:
		return typed, true
	case int64:
		return int(typed), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(typed))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func asString(value any) string {
	if typed, ok := value.(string); ok {
		return typed
	}
	return ""
}
