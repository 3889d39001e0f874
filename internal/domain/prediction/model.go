package prediction

import "time"

// Prediction is one user's forecast for one fixture.
type Prediction struct {
	ID            string
	FixtureID     string
	UserID        string
	PredictedHome int
	PredictedAway int
	IsSubmitted   bool
	Points        *int
	IsCorrect     *bool
	Category      Category
	ScoredAt      *time.Time
}

func (p Prediction) IsScored() bool {
	return p.Points != nil && p.IsCorrect != nil
}
