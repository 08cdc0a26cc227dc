package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePreferences(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"case and spaces", []string{"  Anxiety ", "STRESS"}, []string{"anxiety", "stress"}},
		{"synonyms collapse", []string{"Anxious", "panic attacks", "Low   Mood"}, []string{"anxiety", "depression"}},
		{"unknown passes through", []string{"Work-Life Balance"}, []string{"work-life balance"}},
		{"empties dropped", []string{"", "   ", "grief"}, []string{"grief"}},
		{"first occurrence wins", []string{"Lonely", "loneliness", "isolation"}, []string{"loneliness"}},
		{"nil", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePreferences(tt.in))
		})
	}
}

func TestSplitPreferences(t *testing.T) {
	got := SplitPreferences([]string{"Anxiety, Stress", "grief"})
	assert.Equal(t, []string{"Anxiety", " Stress", "grief"}, got)
	assert.Equal(t, []string{"anxiety", "stress", "grief"}, NormalizePreferences(got))
}
