package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExamSession_Expiry(t *testing.T) {
	session := &ExamSession{Status: SessionInProgress, Duration: 600}

	session.TimeSpent = 599
	assert.False(t, session.IsExpired())
	assert.Equal(t, 1, session.RemainingTime())

	session.TimeSpent = 600
	assert.True(t, session.IsExpired())
	assert.Equal(t, 0, session.RemainingTime())

	session.TimeSpent = 700
	assert.Equal(t, 0, session.RemainingTime())

	// Completed sessions never expire, whatever the counters say.
	session.Status = SessionCompleted
	assert.False(t, session.IsExpired())
}

func TestExamSession_PercentageAndPassed(t *testing.T) {
	session := &ExamSession{TotalQuestions: 10, CorrectAnswers: 7, PassingScore: 500}
	assert.InDelta(t, 70.0, session.Percentage(), 0.001)

	assert.False(t, session.Passed(), "unscored session must not pass")

	score := 500
	session.ScaledScore = &score
	assert.True(t, session.Passed())

	score = 499
	assert.False(t, session.Passed())

	empty := &ExamSession{}
	assert.Equal(t, 0.0, empty.Percentage())
}

func TestQuestion_ChoiceText(t *testing.T) {
	question := &Question{
		ChoiceA:       "alpha",
		ChoiceB:       "beta",
		ChoiceC:       "gamma",
		ChoiceD:       "delta",
		CorrectAnswer: ChoiceC,
	}

	for label, want := range map[ChoiceLabel]string{
		ChoiceA: "alpha",
		ChoiceB: "beta",
		ChoiceC: "gamma",
		ChoiceD: "delta",
	} {
		text, err := question.ChoiceText(label)
		assert.NoError(t, err)
		assert.Equal(t, want, text)
	}

	_, err := question.ChoiceText("e")
	assert.Error(t, err)

	assert.Equal(t, "gamma", question.CorrectAnswerText())
}

func TestChoiceLabel_Valid(t *testing.T) {
	for _, label := range ChoiceLabels {
		assert.True(t, label.Valid())
	}
	assert.False(t, ChoiceLabel("e").Valid())
	assert.False(t, ChoiceLabel("").Valid())
	assert.False(t, ChoiceLabel("A").Valid())
}
