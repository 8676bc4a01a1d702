package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/eppp-prep/exam-service/internal/config"
	"github.com/eppp-prep/exam-service/internal/models"
	"github.com/eppp-prep/exam-service/internal/repositories"
)

// AnalyticsReport is the complete post-exam report. Building it reads the
// session's ledger and nothing else, so it can be regenerated any number of
// times with identical results.
type AnalyticsReport struct {
	Submission  SubmissionInfo        `json:"submission"`
	Performance PerformanceMetrics    `json:"performance"`
	Answers     AnswerBreakdown       `json:"answers"`
	Timing      TimingAnalysis        `json:"timing"`
	Categories  []CategoryPerformance `json:"categories"`
	Questions   []QuestionReview      `json:"questions"`
	Insights    []Insight             `json:"insights"`
}

type SubmissionInfo struct {
	Type               string    `json:"type"`
	At                 time.Time `json:"at"`
	TimeUtilized       int       `json:"time_utilized"`
	TimeAvailable      int       `json:"time_available"`
	TimeRemaining      int       `json:"time_remaining"`
	TimeUtilizationPct float64   `json:"time_utilization_percent"`
}

type PerformanceMetrics struct {
	ScaledScore      int     `json:"scaled_score"`
	Percentage       float64 `json:"percentage"`
	Passed           bool    `json:"passed"`
	PassingScore     int     `json:"passing_score"`
	PerformanceLevel string  `json:"performance_level"`
}

type AnswerBreakdown struct {
	Total           int `json:"total"`
	Answered        int `json:"answered"`
	Skipped         int `json:"skipped"`
	Correct         int `json:"correct"`
	Incorrect       int `json:"incorrect"`
	MarkedForReview int `json:"marked_for_review"`
}

type TimingAnalysis struct {
	TotalSeconds       int     `json:"total_seconds"`
	Formatted          string  `json:"formatted"`
	AveragePerQuestion float64 `json:"average_per_question"`
	AveragePerAnswered float64 `json:"average_per_answered"`
}

type CategoryPerformance struct {
	Name               string  `json:"name"`
	Questions          int     `json:"questions"`
	Correct            int     `json:"correct"`
	Incorrect          int     `json:"incorrect"`
	Skipped            int     `json:"skipped"`
	Accuracy           float64 `json:"accuracy"`
	AvgTimePerQuestion float64 `json:"avg_time_per_question"`
	TotalTime          int     `json:"total_time"`
}

type QuestionReview struct {
	Number        int                           `json:"number"`
	Category      string                        `json:"category"`
	QuestionText  string                        `json:"question"`
	Choices       map[models.ChoiceLabel]string `json:"choices"`
	UserAnswer    *models.ChoiceLabel           `json:"user_answer"`
	CorrectAnswer models.ChoiceLabel            `json:"correct_answer"`
	IsCorrect     *bool                         `json:"is_correct"`
	Explanation   string                        `json:"explanation"`
	TimeSpent     int                           `json:"time_spent"`
	Marked        bool                          `json:"marked"`
	Status        string                        `json:"status"` // "correct", "incorrect", "skipped"
}

// Insight is an advisory finding. Insights shape study recommendations and
// never feed back into the scaled score.
type Insight struct {
	Kind     string `json:"type"`
	Severity string `json:"severity"` // "low", "medium", "high", "critical"
	Message  string `json:"message"`
}

type reportService struct {
	repo   repositories.Repository
	cfg    config.ReportConfig
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, cfg config.ReportConfig, logger *slog.Logger) ReportService {
	return &reportService{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *reportService) GetReport(ctx context.Context, sessionID uuid.UUID) (*AnalyticsReport, error) {
	session, err := s.repo.Session().GetByID(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.Status != models.SessionCompleted {
		return nil, ErrSessionNotCompleted
	}

	records, err := s.repo.Answer().GetBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answer records: %w", err)
	}

	answers := buildAnswerBreakdown(records)
	categories := buildCategoryBreakdown(records)

	report := &AnalyticsReport{
		Submission:  buildSubmissionInfo(session),
		Performance: buildPerformanceMetrics(session),
		Answers:     answers,
		Timing:      buildTimingAnalysis(session, answers.Answered),
		Categories:  categories,
		Questions:   buildQuestionReview(records),
		Insights:    s.buildInsights(session, answers, categories),
	}

	s.logger.Debug("Built analytics report",
		"session_id", sessionID,
		"insights", len(report.Insights))

	return report, nil
}

func buildSubmissionInfo(session *models.ExamSession) SubmissionInfo {
	submissionType := SubmissionManual
	if session.RemainingTime() == 0 {
		submissionType = SubmissionTimeout
	}

	completedAt := session.StartedAt
	if session.CompletedAt != nil {
		completedAt = *session.CompletedAt
	}

	utilization := 0.0
	if session.Duration > 0 {
		utilization = roundOneDecimal(float64(session.TimeSpent) / float64(session.Duration) * 100)
	}

	return SubmissionInfo{
		Type:               submissionType,
		At:                 completedAt,
		TimeUtilized:       session.TimeSpent,
		TimeAvailable:      session.Duration,
		TimeRemaining:      session.RemainingTime(),
		TimeUtilizationPct: utilization,
	}
}

func buildPerformanceMetrics(session *models.ExamSession) PerformanceMetrics {
	scaled := 0
	if session.ScaledScore != nil {
		scaled = *session.ScaledScore
	}
	return PerformanceMetrics{
		ScaledScore:      scaled,
		Percentage:       roundOneDecimal(session.Percentage()),
		Passed:           session.Passed(),
		PassingScore:     session.PassingScore,
		PerformanceLevel: PerformanceLevel(scaled),
	}
}

func buildAnswerBreakdown(records []*models.AnswerRecord) AnswerBreakdown {
	breakdown := AnswerBreakdown{Total: len(records)}
	for _, record := range records {
		if record.Answered() {
			breakdown.Answered++
			if record.IsCorrect != nil && *record.IsCorrect {
				breakdown.Correct++
			}
		}
		if record.MarkedForReview {
			breakdown.MarkedForReview++
		}
	}
	breakdown.Skipped = breakdown.Total - breakdown.Answered
	breakdown.Incorrect = breakdown.Answered - breakdown.Correct
	return breakdown
}

func buildTimingAnalysis(session *models.ExamSession, answered int) TimingAnalysis {
	avgPerQuestion := 0.0
	if session.TotalQuestions > 0 {
		avgPerQuestion = roundOneDecimal(float64(session.TimeSpent) / float64(session.TotalQuestions))
	}
	// Guard: a fully skipped exam has zero answered questions.
	avgPerAnswered := 0.0
	if answered > 0 {
		avgPerAnswered = roundOneDecimal(float64(session.TimeSpent) / float64(answered))
	}

	return TimingAnalysis{
		TotalSeconds:       session.TimeSpent,
		Formatted:          formatDuration(session.TimeSpent),
		AveragePerQuestion: avgPerQuestion,
		AveragePerAnswered: avgPerAnswered,
	}
}

func buildCategoryBreakdown(records []*models.AnswerRecord) []CategoryPerformance {
	type tally struct {
		questions int
		correct   int
		skipped   int
		totalTime int
	}
	tallies := make(map[string]*tally)
	for _, record := range records {
		name := record.Question.Category.Name
		t, ok := tallies[name]
		if !ok {
			t = &tally{}
			tallies[name] = t
		}
		t.questions++
		t.totalTime += record.TimeSpent
		if !record.Answered() {
			t.skipped++
		} else if record.IsCorrect != nil && *record.IsCorrect {
			t.correct++
		}
	}

	categories := make([]CategoryPerformance, 0, len(tallies))
	for name, t := range tallies {
		accuracy := 0.0
		avgTime := 0.0
		if t.questions > 0 {
			accuracy = roundOneDecimal(float64(t.correct) / float64(t.questions) * 100)
			avgTime = roundOneDecimal(float64(t.totalTime) / float64(t.questions))
		}
		categories = append(categories, CategoryPerformance{
			Name:               name,
			Questions:          t.questions,
			Correct:            t.correct,
			Incorrect:          t.questions - t.correct - t.skipped,
			Skipped:            t.skipped,
			Accuracy:           accuracy,
			AvgTimePerQuestion: avgTime,
			TotalTime:          t.totalTime,
		})
	}

	// Weakest first; name breaks ties so the order is stable.
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Accuracy != categories[j].Accuracy {
			return categories[i].Accuracy < categories[j].Accuracy
		}
		return categories[i].Name < categories[j].Name
	})
	return categories
}

func buildQuestionReview(records []*models.AnswerRecord) []QuestionReview {
	questions := make([]QuestionReview, 0, len(records))
	for _, record := range records {
		status := "skipped"
		if record.Answered() {
			status = "incorrect"
			if record.IsCorrect != nil && *record.IsCorrect {
				status = "correct"
			}
		}

		questions = append(questions, QuestionReview{
			Number:        record.Position,
			Category:      record.Question.Category.Name,
			QuestionText:  record.Question.QuestionText,
			Choices:       record.Question.Choices(),
			UserAnswer:    record.UserAnswer,
			CorrectAnswer: record.Question.CorrectAnswer,
			IsCorrect:     record.IsCorrect,
			Explanation:   record.Question.Explanation,
			TimeSpent:     record.TimeSpent,
			Marked:        record.MarkedForReview,
			Status:        status,
		})
	}
	return questions
}

func (s *reportService) buildInsights(session *models.ExamSession, answers AnswerBreakdown, categories []CategoryPerformance) []Insight {
	insights := make([]Insight, 0, 5)
	percentage := session.Percentage()

	var weak []string
	for _, category := range categories {
		if category.Accuracy < s.cfg.WeakCategoryAccuracy {
			weak = append(weak, category.Name)
		}
	}
	if len(weak) > 0 {
		severity := "medium"
		if len(weak) > 2 {
			severity = "high"
		}
		insights = append(insights, Insight{
			Kind:     "weak_categories",
			Severity: severity,
			Message:  fmt.Sprintf("Focus on: %s", joinLimited(weak, 3)),
		})
	}

	if float64(answers.Skipped) > float64(answers.Total)*s.cfg.SkipFraction {
		insights = append(insights, Insight{
			Kind:     "unanswered_questions",
			Severity: "medium",
			Message:  fmt.Sprintf("%d questions unanswered. Attempt all questions.", answers.Skipped),
		})
	}

	if s.underTimePressure(session, percentage) {
		insights = append(insights, Insight{
			Kind:     "time_pressure",
			Severity: "high",
			Message:  "You ran out of time. Practice faster question resolution.",
		})
	}

	if float64(answers.MarkedForReview) > float64(answers.Total)*s.cfg.ReviewFraction {
		insights = append(insights, Insight{
			Kind:     "low_confidence",
			Severity: "medium",
			Message:  fmt.Sprintf("Marked %d for review. Build foundational knowledge.", answers.MarkedForReview),
		})
	}

	switch {
	case percentage >= s.cfg.ExcellentPercentage:
		insights = append(insights, Insight{
			Kind:     "excellent",
			Severity: "low",
			Message:  "Outstanding performance! You're well-prepared.",
		})
	case percentage < s.cfg.NeedsStudyPercentage:
		insights = append(insights, Insight{
			Kind:     "needs_study",
			Severity: "critical",
			Message:  "Review core concepts before next attempt.",
		})
	case percentage < s.cfg.ImprovementPercentage:
		insights = append(insights, Insight{
			Kind:     "needs_improvement",
			Severity: "high",
			Message:  "You're improving! Focus on weak areas to reach passing.",
		})
	}

	return insights
}

// underTimePressure fires on timeout submissions that consumed nearly the
// whole budget, or on manual submissions that finished close to the wire
// with a sub-passing raw percentage.
func (s *reportService) underTimePressure(session *models.ExamSession, percentage float64) bool {
	if session.Duration > 0 {
		utilization := float64(session.TimeSpent) / float64(session.Duration) * 100
		if session.RemainingTime() == 0 && utilization >= s.cfg.HighTimeUtilization {
			return true
		}
	}
	return session.RemainingTime() < s.cfg.LowTimeSeconds && percentage < 70
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}

func formatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func joinLimited(items []string, max int) string {
	if len(items) > max {
		items = items[:max]
	}
	out := ""
	for i, item := range items {
		if i > 0 {
			out += ", "
		}
		out += item
	}
	return out
}
