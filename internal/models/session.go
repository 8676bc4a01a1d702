package models

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionPaused     SessionStatus = "paused"
	SessionCompleted  SessionStatus = "completed"
	SessionExpired    SessionStatus = "expired"
	SessionAbandoned  SessionStatus = "abandoned"
)

// IsTerminal reports whether no further transitions are allowed from the status.
func (s SessionStatus) IsTerminal() bool {
	switch s {
	case SessionCompleted, SessionExpired, SessionAbandoned:
		return true
	}
	return false
}

// IsActive reports whether the session can still accept autosaves and a submit.
func (s SessionStatus) IsActive() bool {
	return s == SessionInProgress || s == SessionPaused
}

// ExamSession is a single exam attempt. It is identified by an opaque UUID
// rather than a user identity; an optional browser fingerprint supports
// resume lookup only.
type ExamSession struct {
	SessionID          uuid.UUID `json:"session_id" gorm:"type:uuid;primaryKey"`
	BrowserFingerprint *string   `json:"browser_fingerprint,omitempty" gorm:"size:255;index"`

	Status SessionStatus `json:"status" gorm:"not null;size:20;default:in_progress;index" validate:"omitempty,oneof=in_progress paused completed expired abandoned"`

	StartedAt   time.Time  `json:"started_at" gorm:"not null"`
	PausedAt    *time.Time `json:"paused_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// TimeSpent accumulates active exam seconds, excluding pauses. It is
	// monotonically non-decreasing while the session is active.
	TimeSpent int `json:"total_time_spent" gorm:"not null;default:0"`
	Duration  int `json:"exam_duration" gorm:"not null"`

	CurrentQuestion int `json:"current_question_number" gorm:"not null;default:1"`

	TotalQuestions int  `json:"total_questions" gorm:"not null"`
	PassingScore   int  `json:"passing_score" gorm:"not null"`
	CorrectAnswers int  `json:"correct_answers" gorm:"not null;default:0"`
	ScaledScore    *int `json:"scaled_score,omitempty"`

	// Relations: the session exclusively owns its answer records and
	// activity events.
	Answers    []AnswerRecord  `json:"-" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
	Activities []ActivityEvent `json:"-" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

func (ExamSession) TableName() string {
	return "exam_sessions"
}

// IsExpired reports whether the configured duration has been exhausted.
// Expiry is a derived predicate evaluated lazily on resume and submit,
// never a background timer. Completed sessions never expire.
func (s *ExamSession) IsExpired() bool {
	if s.Status == SessionCompleted {
		return false
	}
	return s.TimeSpent >= s.Duration
}

// RemainingTime returns the remaining active seconds, floored at zero.
func (s *ExamSession) RemainingTime() int {
	remaining := s.Duration - s.TimeSpent
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Percentage is the raw percent of questions answered correctly.
func (s *ExamSession) Percentage() float64 {
	if s.TotalQuestions == 0 {
		return 0
	}
	return float64(s.CorrectAnswers) / float64(s.TotalQuestions) * 100
}

// Passed reports whether the scaled score meets the configured passing score.
// Unscored sessions never pass.
func (s *ExamSession) Passed() bool {
	return s.ScaledScore != nil && *s.ScaledScore >= s.PassingScore
}

// AnswerRecord links one question into a session's answer sequence. Position
// values for a session form a contiguous 1..N permutation with no gaps or
// duplicates.
type AnswerRecord struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SessionID  uuid.UUID `json:"session_id" gorm:"type:uuid;not null;uniqueIndex:uq_session_position,priority:1;index:idx_session_review,priority:1"`
	QuestionID uint      `json:"question_id" gorm:"not null;index"`

	Position int `json:"question_number" gorm:"not null;uniqueIndex:uq_session_position,priority:2"`

	UserAnswer *ChoiceLabel `json:"user_answer,omitempty" gorm:"size:1" validate:"omitempty,oneof=a b c d"`

	TimeSpent     int        `json:"time_spent" gorm:"not null;default:0"`
	FirstViewedAt *time.Time `json:"first_viewed_at,omitempty"`
	AnsweredAt    *time.Time `json:"answered_at,omitempty"`

	MarkedForReview bool  `json:"marked_for_review" gorm:"not null;default:false;index:idx_session_review,priority:2"`
	IsCorrect       *bool `json:"is_correct,omitempty"`

	// Relations
	Question Question `json:"question" gorm:"foreignKey:QuestionID"`
}

func (AnswerRecord) TableName() string {
	return "answer_records"
}

// Answered reports whether a choice has been recorded for this slot.
func (r *AnswerRecord) Answered() bool {
	return r.UserAnswer != nil
}
