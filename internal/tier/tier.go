// Package tier derives player tiers and salary tiers from current RP and
// performance metrics using ordered threshold tables. All functions are pure;
// tiers are recomputed on read, never stored as truth.
package tier

// PlayerTier is an ordered RP classification bucket.
type PlayerTier string

const (
	Bronze      PlayerTier = "bronze"
	Silver      PlayerTier = "silver"
	Gold        PlayerTier = "gold"
	Platinum    PlayerTier = "platinum"
	Diamond     PlayerTier = "diamond"
	PinkDiamond PlayerTier = "pink_diamond"
	GalaxyOpal  PlayerTier = "galaxy_opal"
)

// SalaryTier is an ordered classification over performance score.
type SalaryTier string

const (
	SalaryD SalaryTier = "D"
	SalaryC SalaryTier = "C"
	SalaryB SalaryTier = "B"
	SalaryA SalaryTier = "A"
	SalaryS SalaryTier = "S"
)

type threshold[T ~string] struct {
	Name T
	Min  float64
}

// Player tiers in ascending order. A value exactly on a boundary belongs to
// the higher tier (closed lower bound, half-open intervals).
var playerThresholds = []threshold[PlayerTier]{
	{Bronze, 0},
	{Silver, 400},
	{Gold, 800},
	{Platinum, 1000},
	{Diamond, 1500},
	{PinkDiamond, 2200},
	{GalaxyOpal, 3000},
}

var salaryThresholds = []threshold[SalaryTier]{
	{SalaryD, 0},
	{SalaryC, 25},
	{SalaryB, 50},
	{SalaryA, 75},
	{SalaryS, 90},
}

func classify[T ~string](thresholds []threshold[T], value float64) T {
	result := thresholds[0].Name
	for _, t := range thresholds {
		if value >= t.Min {
			result = t.Name
		}
	}
	return result
}

// ForRP returns the highest player tier whose lower threshold the RP value
// meets.
func ForRP(currentRP float64) PlayerTier {
	return classify(playerThresholds, currentRP)
}

// ForPerformance returns the salary tier for a performance score.
func ForPerformance(performanceScore float64) SalaryTier {
	return classify(salaryThresholds, performanceScore)
}

// RPBounds returns the half-open RP interval [min, max) covered by a player
// tier. hasMax is false for the top tier.
func RPBounds(t PlayerTier) (min, max float64, hasMax bool) {
	for i, threshold := range playerThresholds {
		if threshold.Name != t {
			continue
		}
		if i+1 < len(playerThresholds) {
			return threshold.Min, playerThresholds[i+1].Min, true
		}
		return threshold.Min, 0, false
	}
	return 0, 0, false
}

// Valid reports whether the name is a known player tier.
func Valid(name string) bool {
	for _, t := range playerThresholds {
		if string(t.Name) == name {
			return true
		}
	}
	return false
}
