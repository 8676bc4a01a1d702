package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the session lifecycle events mirrored to the audit stream.
type EventType string

const (
	EventSessionStarted    EventType = "session.started"
	EventSessionPaused     EventType = "session.paused"
	EventSessionResumed    EventType = "session.resumed"
	EventSessionSubmitted  EventType = "session.submitted"
	EventSessionExpired    EventType = "session.expired"
	EventCategoryCorrected EventType = "question.category_corrected"
)

// SessionEvent is the envelope for all session audit events.
type SessionEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type SessionStartedEvent struct {
	SessionID      uuid.UUID `json:"session_id"`
	TotalQuestions int       `json:"total_questions"`
	Duration       int       `json:"exam_duration"`
	StartedAt      time.Time `json:"started_at"`
	HasFingerprint bool      `json:"has_fingerprint"`
}

type SessionSubmittedEvent struct {
	SessionID      uuid.UUID `json:"session_id"`
	SubmittedAt    time.Time `json:"submitted_at"`
	SubmissionType string    `json:"submission_type"` // "manual" or "timeout"
	CorrectAnswers int       `json:"correct_answers"`
	ScaledScore    int       `json:"scaled_score"`
	Passed         bool      `json:"passed"`
}

type SessionExpiredEvent struct {
	SessionID uuid.UUID `json:"session_id"`
	ExpiredAt time.Time `json:"expired_at"`
	TimeSpent int       `json:"total_time_spent"`
}

type CategoryCorrectedEvent struct {
	QuestionID    uint   `json:"question_id"`
	OldCategoryID uint   `json:"old_category_id"`
	NewCategoryID uint   `json:"new_category_id"`
	NewCategory   string `json:"new_category"`
}
