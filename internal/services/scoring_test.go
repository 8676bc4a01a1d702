package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScaledScore_Anchors(t *testing.T) {
	assert.Equal(t, 200, ScaledScore(0))
	assert.Equal(t, 500, ScaledScore(70))
	assert.Equal(t, 800, ScaledScore(100))
}

func TestScaledScore_Piecewise(t *testing.T) {
	// Below the knee: 200 + p/70*300.
	assert.Equal(t, 350, ScaledScore(35))
	assert.Equal(t, 414, ScaledScore(50))
	// Above the knee: 500 + (p-70)/30*300.
	assert.Equal(t, 600, ScaledScore(80))
	assert.Equal(t, 700, ScaledScore(90))
}

func TestScaledScore_MonotonicAndClamped(t *testing.T) {
	previous := ScaledScore(0)
	for p := 1; p <= 100; p++ {
		score := ScaledScore(float64(p))
		assert.GreaterOrEqual(t, score, previous, "percentage %d", p)
		assert.GreaterOrEqual(t, score, MinScaledScore)
		assert.LessOrEqual(t, score, MaxScaledScore)
		previous = score
	}
}

func TestScoreFromCounts(t *testing.T) {
	// 7 of 10 correct lands exactly on the 70% knee.
	assert.Equal(t, 500, ScoreFromCounts(7, 10))
	assert.Equal(t, 200, ScoreFromCounts(0, 10))
	assert.Equal(t, 800, ScoreFromCounts(10, 10))
	assert.Equal(t, MinScaledScore, ScoreFromCounts(0, 0))
}

func TestPerformanceLevel(t *testing.T) {
	tests := []struct {
		score int
		level string
	}{
		{800, "Excellent"},
		{700, "Excellent"},
		{699, "Very Good"},
		{600, "Very Good"},
		{599, "Pass"},
		{500, "Pass"},
		{499, "Supervised Practice Level"},
		{450, "Supervised Practice Level"},
		{449, "Below Passing"},
		{200, "Below Passing"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.level, PerformanceLevel(tt.score), "score %d", tt.score)
	}
}
