package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateMatchScore_CaseInsensitiveOverlap(t *testing.T) {
	score := CalculateMatchScore([]string{"Anxiety"}, []string{"anxiety", "Stress"}, Signals{})

	assert.Greater(t, score, 0)
	// one of two candidate tags overlaps
	assert.Equal(t, BaselineScore+30, score)
}

func TestCalculateMatchScore_NormalizationEquivalentInputs(t *testing.T) {
	a := CalculateMatchScore([]string{"ANXIETY", "Grief"}, []string{"anxious", "loss", "sleep"}, Signals{IsActive: true})
	b := CalculateMatchScore([]string{"anxiety", "grief "}, []string{"Anxiety", "GRIEF", "Insomnia"}, Signals{IsActive: true})

	assert.Equal(t, a, b)
}

func TestCalculateMatchScore_SubstringTolerance(t *testing.T) {
	score := CalculateMatchScore([]string{"stress"}, []string{"work stress"}, Signals{})
	assert.Equal(t, BaselineScore+60, score)
}

func TestCalculateMatchScore_EmptySetsGetBaseline(t *testing.T) {
	assert.Equal(t, BaselineScore, CalculateMatchScore(nil, []string{"anxiety"}, Signals{}))
	assert.Equal(t, BaselineScore, CalculateMatchScore([]string{"anxiety"}, nil, Signals{}))
	assert.Equal(t, BaselineScore, CalculateMatchScore([]string{"anxiety"}, []string{"trauma"}, Signals{}))
}

func TestCalculateMatchScore_Bounds(t *testing.T) {
	inputs := [][]string{
		nil,
		{"anxiety"},
		{"anxiety", "depression", "stress", "grief"},
		{"a", "b", "c"},
	}
	for _, v := range inputs {
		for _, c := range inputs {
			for _, s := range []Signals{{}, {IsActive: true, Rating: 5}, {Rating: -1}} {
				score := CalculateMatchScore(v, c, s)
				assert.GreaterOrEqual(t, score, 0)
				assert.LessOrEqual(t, score, 100)
			}
		}
	}
}

func TestCalculateMatchScore_FullOverlapWithSignalsHitsCeiling(t *testing.T) {
	score := CalculateMatchScore([]string{"anxiety"}, []string{"anxiety"}, Signals{IsActive: true, Rating: 4.9})
	assert.Equal(t, 100, score)
}
