package analyzer

import "math"

// Maintainability index rank bounds (exclusive lower bounds)
const (
	MIRankAMin = 19.0
	MIRankBMin = 9.0

	// LowMaintainabilityThreshold marks files worth calling out in explanations
	LowMaintainabilityThreshold = 50.0
)

// MaintainabilityIndex computes the normalized (0-100) maintainability index
// from Halstead volume, total cyclomatic complexity, source lines and the
// comment-line percentage. Empty code scores 100.
func MaintainabilityIndex(volume float64, complexity int, sloc int, commentPercent float64) float64 {
	if volume <= 0 || sloc <= 0 {
		return 100
	}
	commentScale := math.Sqrt(2.46 * commentPercent * math.Pi / 180)
	raw := 171 -
		5.2*math.Log(volume) -
		0.23*float64(complexity) -
		16.2*math.Log(float64(sloc)) +
		50*math.Sin(commentScale)
	return math.Min(math.Max(0, raw*100/171), 100)
}

// MaintainabilityRank maps an index to A (>19), B (>9) or C
func MaintainabilityRank(index float64) string {
	switch {
	case index > MIRankAMin:
		return "A"
	case index > MIRankBMin:
		return "B"
	default:
		return "C"
	}
}

// RoundTo rounds v to the given number of decimals
func RoundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
