package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/eppp-prep/exam-service/internal/models"
	"github.com/eppp-prep/exam-service/internal/repositories"
)

// ===== REQUEST TYPES =====

type StartSessionRequest struct {
	BrowserFingerprint *string `json:"browser_fingerprint,omitempty" validate:"omitempty,min=8,max=255"`
}

// ProgressUpdate carries the session-level counters of an autosave or submit.
// The client sends authoritative cumulative values.
type ProgressUpdate struct {
	TimeSpent       int `json:"total_time_spent" validate:"min=0"`
	CurrentQuestion int `json:"current_question_number" validate:"min=1"`
}

// AnswerUpdate is one per-slot entry of an autosave batch. A nil UserAnswer
// updates timing and review state without recording a choice.
type AnswerUpdate struct {
	Position        int                 `json:"question_number" validate:"min=1"`
	UserAnswer      *models.ChoiceLabel `json:"user_answer,omitempty" validate:"omitempty,choice_label"`
	TimeSpent       int                 `json:"time_spent" validate:"min=0"`
	MarkedForReview bool                `json:"marked_for_review"`
}

type SaveRequest struct {
	Progress ProgressUpdate `json:"progress"`
	Answers  []AnswerUpdate `json:"answers" validate:"dive"`
}

// ===== RESPONSE TYPES =====

// SessionState is the full client-facing view of an active session.
type SessionState struct {
	Session *models.ExamSession    `json:"session"`
	Answers []*models.AnswerRecord `json:"answers"`
}

type ScoreSummary struct {
	SessionID        uuid.UUID `json:"session_id"`
	CorrectAnswers   int       `json:"correct_answers"`
	TotalQuestions   int       `json:"total_questions"`
	Percentage       float64   `json:"percentage"`
	ScaledScore      int       `json:"scaled_score"`
	PassingScore     int       `json:"passing_score"`
	Passed           bool      `json:"passed"`
	PerformanceLevel string    `json:"performance_level"`
	SubmissionType   string    `json:"submission_type"`
	TimeSpent        int       `json:"total_time_spent"`
	CompletedAt      time.Time `json:"completed_at"`
}

type SubmitResult struct {
	Session *models.ExamSession `json:"session"`
	Score   *ScoreSummary       `json:"score"`
}

// ActiveSessionCheck answers a fingerprint lookup before starting a new exam.
type ActiveSessionCheck struct {
	HasActiveSession bool                 `json:"has_active_session"`
	SessionID        *uuid.UUID           `json:"session_id,omitempty"`
	Status           models.SessionStatus `json:"status,omitempty"`
	RemainingTime    int                  `json:"remaining_time,omitempty"`
	CurrentQuestion  int                  `json:"current_question_number,omitempty"`
}

// CompletedSessionSummary is one row of the results listing.
type CompletedSessionSummary struct {
	SessionID        uuid.UUID `json:"session_id"`
	CompletedAt      time.Time `json:"completed_at"`
	ScaledScore      int       `json:"scaled_score"`
	Passed           bool      `json:"passed"`
	PerformanceLevel string    `json:"performance_level"`
	CorrectAnswers   int       `json:"correct_answers"`
	TotalQuestions   int       `json:"total_questions"`
	Accuracy         float64   `json:"accuracy"`
	TimeSpent        int       `json:"total_time_spent"`
}

type SessionListResult struct {
	Results []CompletedSessionSummary `json:"results"`
	Total   int64                     `json:"total"`
	Limit   int                       `json:"limit"`
	Offset  int                       `json:"offset"`
}

// ===== SERVICE INTERFACES =====

// SessionService owns the exam session lifecycle.
type SessionService interface {
	Start(ctx context.Context, req *StartSessionRequest) (*SessionState, error)
	Resume(ctx context.Context, sessionID uuid.UUID) (*SessionState, error)
	Pause(ctx context.Context, sessionID uuid.UUID) (*models.ExamSession, error)
	Autosave(ctx context.Context, sessionID uuid.UUID, req *SaveRequest) error
	Submit(ctx context.Context, sessionID uuid.UUID, req *SaveRequest) (*SubmitResult, error)

	CheckActive(ctx context.Context, fingerprint string) (*ActiveSessionCheck, error)
	ListCompleted(ctx context.Context, filters repositories.SessionFilters) (*SessionListResult, error)
}

// ReportService builds post-exam analytics for completed sessions.
type ReportService interface {
	GetReport(ctx context.Context, sessionID uuid.UUID) (*AnalyticsReport, error)
}

// QuestionService covers the administrative reference-data operations the
// reporting site performs against the bank.
type QuestionService interface {
	ListCategories(ctx context.Context) ([]*models.Category, error)
	CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uint) error

	GetQuestion(ctx context.Context, id uint) (*models.Question, error)
	CreateQuestion(ctx context.Context, req *CreateQuestionRequest) (*models.Question, error)
	// CorrectQuestionCategory reassigns a question to another category and
	// logs the correction against the session it was noticed in.
	CorrectQuestionCategory(ctx context.Context, sessionID uuid.UUID, questionID, newCategoryID uint) (*models.Question, error)
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

type CreateQuestionRequest struct {
	CategoryID    uint               `json:"category_id" validate:"required"`
	QuestionText  string             `json:"question_text" validate:"required"`
	ChoiceA       string             `json:"choice_a" validate:"required,max=500"`
	ChoiceB       string             `json:"choice_b" validate:"required,max=500"`
	ChoiceC       string             `json:"choice_c" validate:"required,max=500"`
	ChoiceD       string             `json:"choice_d" validate:"required,max=500"`
	CorrectAnswer models.ChoiceLabel `json:"correct_answer" validate:"required,choice_label"`
	Explanation   string             `json:"explanation"`
}
