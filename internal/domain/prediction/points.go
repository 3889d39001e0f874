package prediction

type Category string

const (
	CategoryExact      Category = "exact"
	CategoryDifference Category = "difference"
	CategoryResult     Category = "result"
	CategoryNone       Category = "none"
)

const (
	PointsExact      = 5
	PointsDifference = 3
	PointsResult     = 1
)

type Outcome string

const (
	OutcomeHomeWin Outcome = "home_win"
	OutcomeAwayWin Outcome = "away_win"
	OutcomeDraw    Outcome = "draw"
)

type Result struct {
	Points      int
	IsCorrect   bool
	Category    Category
	Description string
}

func OutcomeOf(home, away int) Outcome {
	switch {
	case home > away:
		return OutcomeHomeWin
	case home < away:
		return OutcomeAwayWin
	default:
		return OutcomeDraw
	}
}

// CalculatePoints scores a predicted score against the actual score. First matching rule wins.
func CalculatePoints(predictedHome, predictedAway, actualHome, actualAway int) Result {
	if predictedHome == actualHome && predictedAway == actualAway {
		return Result{
			Points:      PointsExact,
			IsCorrect:   true,
			Category:    CategoryExact,
			Description: "Exact score",
		}
	}

	sameOutcome := OutcomeOf(predictedHome, predictedAway) == OutcomeOf(actualHome, actualAway)

	// Both checks are kept: inputs outside normal score ranges can make them disagree.
	if predictedHome-predictedAway == actualHome-actualAway && sameOutcome {
		return Result{
			Points:      PointsDifference,
			IsCorrect:   true,
			Category:    CategoryDifference,
			Description: "Correct goal difference",
		}
	}

	if sameOutcome {
		return Result{
			Points:      PointsResult,
			IsCorrect:   true,
			Category:    CategoryResult,
			Description: "Correct result",
		}
	}

	return Result{
		Points:      0,
		IsCorrect:   false,
		Category:    CategoryNone,
		Description: "Incorrect prediction",
	}
}
