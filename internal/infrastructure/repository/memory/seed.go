package memory

import (
	"time"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	"github.com/riskibarqy/score-predictor/internal/domain/prediction"
)

const SeedSeason = "2025/2026"

// SeedFixtures returns a small match day anchored on now so a fresh process has something to poll.
func SeedFixtures(now time.Time) []fixture.Fixture {
	at := func(offset time.Duration) *time.Time {
		v := now.Add(offset).Truncate(time.Minute).UTC()
		return &v
	}
	score := func(v int) *int { return &v }

	return []fixture.Fixture{
		{
			ID: "fx-001", ExternalID: 1208001, Gameweek: 24, Season: SeedSeason,
			HomeTeamID: "idn-persija", AwayTeamID: "idn-persib",
			HomeTeam: "Persija Jakarta", AwayTeam: "Persib Bandung",
			KickoffAt: at(-26 * time.Hour), Status: fixture.StatusFinished,
			HomeScore: score(2), AwayScore: score(1),
			Venue: "Jakarta International Stadium",
		},
		{
			ID: "fx-002", ExternalID: 1208002, Gameweek: 24, Season: SeedSeason,
			HomeTeamID: "idn-persebaya", AwayTeamID: "idn-arema",
			HomeTeam: "Persebaya Surabaya", AwayTeam: "Arema FC",
			KickoffAt: at(-40 * time.Minute), Status: fixture.StatusLive,
			HomeScore: score(1), AwayScore: score(0), Minute: score(40),
			Venue: "Gelora Bung Tomo",
		},
		{
			ID: "fx-003", ExternalID: 1208003, Gameweek: 24, Season: SeedSeason,
			HomeTeamID: "idn-bali-united", AwayTeamID: "idn-psm",
			HomeTeam: "Bali United", AwayTeam: "PSM Makassar",
			KickoffAt: at(20 * time.Minute), Status: fixture.StatusScheduled,
			Venue: "Kapten I Wayan Dipta",
		},
		{
			ID: "fx-004", ExternalID: 1208004, Gameweek: 25, Season: SeedSeason,
			HomeTeamID: "idn-persib", AwayTeamID: "idn-persebaya",
			HomeTeam: "Persib Bandung", AwayTeam: "Persebaya Surabaya",
			KickoffAt: at(27 * time.Hour), Status: fixture.StatusScheduled,
			Venue: "Gelora Bandung Lautan Api",
		},
	}
}

func SeedPredictions() []prediction.Prediction {
	return []prediction.Prediction{
		{ID: "pr-001", FixtureID: "fx-002", UserID: "user-ayu", PredictedHome: 2, PredictedAway: 0, IsSubmitted: true},
		{ID: "pr-002", FixtureID: "fx-002", UserID: "user-budi", PredictedHome: 1, PredictedAway: 1, IsSubmitted: true},
		{ID: "pr-003", FixtureID: "fx-002", UserID: "user-citra", PredictedHome: 0, PredictedAway: 2, IsSubmitted: false},
		{ID: "pr-004", FixtureID: "fx-003", UserID: "user-ayu", PredictedHome: 1, PredictedAway: 0, IsSubmitted: true},
		{ID: "pr-005", FixtureID: "fx-003", UserID: "user-budi", PredictedHome: 2, PredictedAway: 2, IsSubmitted: true},
	}
}
