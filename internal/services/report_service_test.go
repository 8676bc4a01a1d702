package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eppp-prep/exam-service/internal/config"
	"github.com/eppp-prep/exam-service/internal/models"
)

func testReportConfig() config.ReportConfig {
	return config.ReportConfig{
		WeakCategoryAccuracy:  65,
		SkipFraction:          0.10,
		ReviewFraction:        0.20,
		HighTimeUtilization:   95,
		LowTimeSeconds:        60,
		ExcellentPercentage:   80,
		ImprovementPercentage: 70,
		NeedsStudyPercentage:  50,
	}
}

// seedCompletedSession stores a completed 10-question session split over two
// categories: positions 1-5 from "Biological Bases", 6-10 from "Ethics".
func seedCompletedSession(t *testing.T, repo *fakeRepository, timeSpent int, build func(position int, record *models.AnswerRecord)) uuid.UUID {
	t.Helper()

	nextID := uint(1)
	repo.seedCategory(1, "Biological Bases", 5, &nextID)
	repo.seedCategory(2, "Ethics", 5, &nextID)

	completedAt := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	session := &models.ExamSession{
		SessionID:      uuid.New(),
		Status:         models.SessionCompleted,
		StartedAt:      completedAt.Add(-time.Hour),
		CompletedAt:    &completedAt,
		TimeSpent:      timeSpent,
		Duration:       600,
		TotalQuestions: 10,
		PassingScore:   500,
	}

	records := make([]*models.AnswerRecord, 10)
	correct := 0
	for i := 0; i < 10; i++ {
		records[i] = &models.AnswerRecord{
			SessionID:  session.SessionID,
			QuestionID: uint(i + 1),
			Position:   i + 1,
		}
		build(i+1, records[i])
		if records[i].IsCorrect != nil && *records[i].IsCorrect {
			correct++
		}
	}

	session.CorrectAnswers = correct
	scaled := ScoreFromCounts(correct, 10)
	session.ScaledScore = &scaled

	ctx := context.Background()
	require.NoError(t, repo.Session().Create(ctx, session))
	require.NoError(t, repo.Answer().CreateBatch(ctx, records))
	return session.SessionID
}

// answerRecord fills one ledger row as answered with the given correctness.
func answerRecord(record *models.AnswerRecord, choice models.ChoiceLabel, correct bool, timeSpent int) {
	answeredAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	record.UserAnswer = &choice
	record.AnsweredAt = &answeredAt
	record.FirstViewedAt = &answeredAt
	record.IsCorrect = &correct
	record.TimeSpent = timeSpent
}

func TestGetReport_BreakdownsAndOrdering(t *testing.T) {
	repo := newFakeRepository()
	sessionID := seedCompletedSession(t, repo, 300, func(position int, record *models.AnswerRecord) {
		switch {
		case position <= 4:
			// Biological Bases: 4 correct.
			answerRecord(record, models.ChoiceA, true, 30)
		case position == 5:
			answerRecord(record, models.ChoiceB, false, 30)
		case position == 6:
			// Ethics: 1 correct, 2 incorrect, 2 skipped.
			answerRecord(record, models.ChoiceA, true, 30)
		case position <= 8:
			answerRecord(record, models.ChoiceC, false, 30)
			record.MarkedForReview = true
		default:
			record.TimeSpent = 30
			record.MarkedForReview = position == 9
		}
	})

	svc := NewReportService(repo, testReportConfig(), testLogger())
	report, err := svc.GetReport(context.Background(), sessionID)
	require.NoError(t, err)

	assert.Equal(t, AnswerBreakdown{
		Total:           10,
		Answered:        8,
		Skipped:         2,
		Correct:         5,
		Incorrect:       3,
		MarkedForReview: 3,
	}, report.Answers)

	assert.Equal(t, 300, report.Timing.TotalSeconds)
	assert.Equal(t, "00:05:00", report.Timing.Formatted)
	assert.InDelta(t, 30.0, report.Timing.AveragePerQuestion, 0.001)
	assert.InDelta(t, 37.5, report.Timing.AveragePerAnswered, 0.001)

	require.Len(t, report.Categories, 2)
	// Weakest first.
	assert.Equal(t, "Ethics", report.Categories[0].Name)
	assert.InDelta(t, 20.0, report.Categories[0].Accuracy, 0.001)
	assert.Equal(t, 2, report.Categories[0].Skipped)
	assert.Equal(t, "Biological Bases", report.Categories[1].Name)
	assert.InDelta(t, 80.0, report.Categories[1].Accuracy, 0.001)

	require.Len(t, report.Questions, 10)
	assert.Equal(t, "correct", report.Questions[0].Status)
	assert.Equal(t, "incorrect", report.Questions[4].Status)
	assert.Equal(t, "skipped", report.Questions[9].Status)
	for i, question := range report.Questions {
		assert.Equal(t, i+1, question.Number)
	}
}

func TestGetReport_Insights(t *testing.T) {
	repo := newFakeRepository()
	sessionID := seedCompletedSession(t, repo, 300, func(position int, record *models.AnswerRecord) {
		switch {
		case position <= 4:
			answerRecord(record, models.ChoiceA, true, 30)
		case position == 5:
			answerRecord(record, models.ChoiceB, false, 30)
		case position == 6:
			answerRecord(record, models.ChoiceA, true, 30)
		case position <= 8:
			answerRecord(record, models.ChoiceC, false, 30)
			record.MarkedForReview = true
		default:
			record.MarkedForReview = position == 9
		}
	})

	svc := NewReportService(repo, testReportConfig(), testLogger())
	report, err := svc.GetReport(context.Background(), sessionID)
	require.NoError(t, err)

	kinds := make(map[string]Insight)
	for _, insight := range report.Insights {
		kinds[insight.Kind] = insight
	}

	weak, ok := kinds["weak_categories"]
	require.True(t, ok)
	assert.Equal(t, "medium", weak.Severity)
	assert.Contains(t, weak.Message, "Ethics")

	unanswered, ok := kinds["unanswered_questions"]
	require.True(t, ok)
	assert.Equal(t, "medium", unanswered.Severity)

	_, ok = kinds["low_confidence"]
	assert.True(t, ok)

	_, ok = kinds["time_pressure"]
	assert.False(t, ok)
	_, ok = kinds["excellent"]
	assert.False(t, ok)
	_, ok = kinds["needs_study"]
	assert.False(t, ok)
}

func TestGetReport_TimeoutTimePressure(t *testing.T) {
	repo := newFakeRepository()
	// The entire budget was consumed and less than 70% is correct.
	sessionID := seedCompletedSession(t, repo, 600, func(position int, record *models.AnswerRecord) {
		answerRecord(record, models.ChoiceA, position <= 6, 60)
	})

	svc := NewReportService(repo, testReportConfig(), testLogger())
	report, err := svc.GetReport(context.Background(), sessionID)
	require.NoError(t, err)

	assert.Equal(t, SubmissionTimeout, report.Submission.Type)
	assert.InDelta(t, 100.0, report.Submission.TimeUtilizationPct, 0.001)

	found := false
	for _, insight := range report.Insights {
		if insight.Kind == "time_pressure" {
			found = true
			assert.Equal(t, "high", insight.Severity)
		}
	}
	assert.True(t, found)
}

func TestGetReport_ExcellentPerformance(t *testing.T) {
	repo := newFakeRepository()
	sessionID := seedCompletedSession(t, repo, 200, func(position int, record *models.AnswerRecord) {
		answerRecord(record, models.ChoiceA, position <= 9, 20)
	})

	svc := NewReportService(repo, testReportConfig(), testLogger())
	report, err := svc.GetReport(context.Background(), sessionID)
	require.NoError(t, err)

	assert.Equal(t, 700, report.Performance.ScaledScore)
	assert.True(t, report.Performance.Passed)
	assert.Equal(t, "Excellent", report.Performance.PerformanceLevel)

	kinds := make([]string, 0, len(report.Insights))
	for _, insight := range report.Insights {
		kinds = append(kinds, insight.Kind)
	}
	assert.Contains(t, kinds, "excellent")
	assert.NotContains(t, kinds, "weak_categories")
}

// overallInsightKinds runs a report over a session with the given number of
// correct answers and returns the emitted insight kinds.
func overallInsightKinds(t *testing.T, correct int) map[string]Insight {
	t.Helper()

	repo := newFakeRepository()
	sessionID := seedCompletedSession(t, repo, 300, func(position int, record *models.AnswerRecord) {
		answerRecord(record, models.ChoiceA, position <= correct, 30)
	})

	svc := NewReportService(repo, testReportConfig(), testLogger())
	report, err := svc.GetReport(context.Background(), sessionID)
	require.NoError(t, err)

	kinds := make(map[string]Insight)
	for _, insight := range report.Insights {
		kinds[insight.Kind] = insight
	}
	return kinds
}

func TestGetReport_OverallPerformanceBands(t *testing.T) {
	// 60%: the middle band.
	kinds := overallInsightKinds(t, 6)
	improvement, ok := kinds["needs_improvement"]
	require.True(t, ok)
	assert.Equal(t, "high", improvement.Severity)
	assert.Equal(t, "You're improving! Focus on weak areas to reach passing.", improvement.Message)
	assert.NotContains(t, kinds, "needs_study")
	assert.NotContains(t, kinds, "excellent")

	// 40%: failing outright.
	kinds = overallInsightKinds(t, 4)
	study, ok := kinds["needs_study"]
	require.True(t, ok)
	assert.Equal(t, "critical", study.Severity)
	assert.NotContains(t, kinds, "needs_improvement")

	// 70%: between the improvement and excellent cutoffs, no overall insight.
	kinds = overallInsightKinds(t, 7)
	assert.NotContains(t, kinds, "needs_improvement")
	assert.NotContains(t, kinds, "needs_study")
	assert.NotContains(t, kinds, "excellent")
}

func TestGetReport_ZeroAnsweredGuard(t *testing.T) {
	repo := newFakeRepository()
	sessionID := seedCompletedSession(t, repo, 100, func(position int, record *models.AnswerRecord) {
		record.TimeSpent = 10
	})

	svc := NewReportService(repo, testReportConfig(), testLogger())
	report, err := svc.GetReport(context.Background(), sessionID)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Answers.Answered)
	assert.Equal(t, 0.0, report.Timing.AveragePerAnswered)
}

func TestGetReport_RequiresCompletedSession(t *testing.T) {
	repo := newFakeRepository()
	session := &models.ExamSession{
		SessionID:      uuid.New(),
		Status:         models.SessionInProgress,
		StartedAt:      time.Now(),
		Duration:       600,
		TotalQuestions: 10,
		PassingScore:   500,
	}
	require.NoError(t, repo.Session().Create(context.Background(), session))

	svc := NewReportService(repo, testReportConfig(), testLogger())
	_, err := svc.GetReport(context.Background(), session.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotCompleted)

	_, err = svc.GetReport(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetReport_IsRepeatable(t *testing.T) {
	repo := newFakeRepository()
	sessionID := seedCompletedSession(t, repo, 300, func(position int, record *models.AnswerRecord) {
		answerRecord(record, models.ChoiceA, position%2 == 0, 30)
	})

	svc := NewReportService(repo, testReportConfig(), testLogger())
	first, err := svc.GetReport(context.Background(), sessionID)
	require.NoError(t, err)
	second, err := svc.GetReport(context.Background(), sessionID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
