package services

// Score scale bounds.
const (
	MinScaledScore = 200
	MaxScaledScore = 800
)

// ScaledScore converts a raw percentage of correct answers onto the 200-800
// scale with a piecewise-linear curve anchored at 70% -> 500:
//
//	p >= 70: 500 + (p-70)/30 * 300
//	p <  70: 200 + p/70 * 300
//
// The result is truncated toward zero, then clamped to [200, 800].
func ScaledScore(percentage float64) int {
	var scaled float64
	if percentage >= 70 {
		scaled = 500 + (percentage-70)/30*300
	} else {
		scaled = 200 + percentage/70*300
	}

	score := int(scaled)
	if score < MinScaledScore {
		score = MinScaledScore
	}
	if score > MaxScaledScore {
		score = MaxScaledScore
	}
	return score
}

// ScoreFromCounts computes the scaled score from raw counts. A zero-question
// session scores the scale minimum.
func ScoreFromCounts(correct, total int) int {
	if total == 0 {
		return MinScaledScore
	}
	return ScaledScore(float64(correct) / float64(total) * 100)
}

// PerformanceLevel maps a scaled score to the descriptive band shown in
// result listings.
func PerformanceLevel(scaledScore int) string {
	switch {
	case scaledScore >= 700:
		return "Excellent"
	case scaledScore >= 600:
		return "Very Good"
	case scaledScore >= 500:
		return "Pass"
	case scaledScore >= 450:
		return "Supervised Practice Level"
	default:
		return "Below Passing"
	}
}
