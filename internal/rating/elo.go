package rating

import "math"

// DefaultKFactor is used when a match carries no event configuration.
const DefaultKFactor = 20

// ExpectedScore returns the probability of the first rating beating the
// second under the standard ELO model.
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/400.0))
}

// Update returns both teams' new ratings after a decisive match.
// aWon selects the actual score: 1 for the winner, 0 for the loser.
func Update(ratingA, ratingB, k float64, aWon bool) (newA, newB float64) {
	expectedA := ExpectedScore(ratingA, ratingB)
	expectedB := 1.0 - expectedA

	scoreA, scoreB := 0.0, 1.0
	if aWon {
		scoreA, scoreB = 1.0, 0.0
	}

	newA = ratingA + k*(scoreA-expectedA)
	newB = ratingB + k*(scoreB-expectedB)
	return newA, newB
}
