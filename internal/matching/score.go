package matching

import (
	"math"
	"strings"
)

const (
	// BaselineScore is what a candidate gets with no overlap at all
	BaselineScore = 30
	// overlapWeight is spread across the candidate's tags
	overlapWeight = 60
	activeBonus   = 5
	ratingBonus   = 5
	// HighRating earns the rating bonus
	HighRating = 4.5
)

// Signals are the secondary inputs to a match score
type Signals struct {
	IsActive bool
	Rating   float64
}

// CalculateMatchScore rates how well a candidate fits the viewer, 0 to 100.
// A candidate tag overlaps when it contains, or is contained in, any viewer
// tag after normalization.
func CalculateMatchScore(viewer, candidate []string, s Signals) int {
	v := NormalizePreferences(viewer)
	c := NormalizePreferences(candidate)

	score := BaselineScore
	if len(v) > 0 && len(c) > 0 {
		overlap := 0
		for _, ct := range c {
			for _, vt := range v {
				if strings.Contains(ct, vt) || strings.Contains(vt, ct) {
					overlap++
					break
				}
			}
		}
		score += int(math.Round(overlapWeight * float64(overlap) / float64(len(c))))
	}

	if s.IsActive {
		score += activeBonus
	}
	if s.Rating >= HighRating {
		score += ratingBonus
	}

	return clamp(score, 0, 100)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
