package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/eppp-prep/exam-service/internal/events"
	"github.com/eppp-prep/exam-service/internal/models"
	"github.com/eppp-prep/exam-service/internal/repositories"
)

// getSessionTxForUpdate loads the session under a row lock so the status
// check and the writes that follow serialize against racing writers. A
// completed status seen through this read is final for the transaction.
func (s *sessionService) getSessionTxForUpdate(ctx context.Context, repo repositories.Repository, sessionID uuid.UUID) (*models.ExamSession, error) {
	session, err := repo.Session().GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		if repositories.IsLockNotAvailableError(err) {
			return nil, ErrConcurrentModification
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

func (s *sessionService) loadState(ctx context.Context, session *models.ExamSession) (*SessionState, error) {
	records, err := s.repo.Answer().GetBySession(ctx, session.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answer records: %w", err)
	}
	return &SessionState{Session: session, Answers: records}, nil
}

// announceExpired drops the fingerprint cache entry and mirrors the expiry
// event once the forced transition has committed.
func (s *sessionService) announceExpired(ctx context.Context, session *models.ExamSession) {
	if session.BrowserFingerprint != nil {
		if cacheErr := s.cache.DeleteActive(ctx, *session.BrowserFingerprint); cacheErr != nil {
			s.logger.Warn("Failed to drop session cache entry", "session_id", session.SessionID, "error", cacheErr)
		}
	}

	s.publishEvent(ctx, events.EventSessionExpired, &events.SessionExpiredEvent{
		SessionID: session.SessionID,
		ExpiredAt: s.clock.Now(),
		TimeSpent: session.TimeSpent,
	})

	s.logger.Info("Expired exam session", "session_id", session.SessionID)
}

func (s *sessionService) findActiveSession(ctx context.Context, fingerprint string) (*models.ExamSession, error) {
	if cachedID, ok, err := s.cache.GetActive(ctx, fingerprint); err == nil && ok {
		session, err := s.repo.Session().GetByID(ctx, cachedID)
		if err == nil && session.Status.IsActive() {
			return session, nil
		}
		// The cached session is gone or finished; fall through to the
		// database lookup.
		_ = s.cache.DeleteActive(ctx, fingerprint)
	} else if err != nil {
		s.logger.Warn("Session cache lookup failed", "error", err)
	}

	session, err := s.repo.Session().GetActiveByFingerprint(ctx, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to look up active session: %w", err)
	}
	return session, nil
}

// applyProgress folds the client's session-level counters into the session.
// The time counter never moves backwards, so replayed or out-of-order
// batches cannot shrink recorded time.
func applyProgress(session *models.ExamSession, progress ProgressUpdate) {
	if progress.TimeSpent > session.TimeSpent {
		session.TimeSpent = progress.TimeSpent
	}
	if progress.CurrentQuestion >= 1 && progress.CurrentQuestion <= session.TotalQuestions {
		session.CurrentQuestion = progress.CurrentQuestion
	}
}

// applyAnswerBatch applies per-slot updates per the ledger rules:
// first-viewed is set once, time-spent and marked-for-review always take the
// incoming value, and the choice plus correctness are written only when the
// batch supplies a label. Unknown positions are skipped.
func (s *sessionService) applyAnswerBatch(ctx context.Context, txRepo repositories.Repository, records []*models.AnswerRecord, updates []AnswerUpdate) error {
	byPosition := make(map[int]*models.AnswerRecord, len(records))
	for _, record := range records {
		byPosition[record.Position] = record
	}

	now := s.clock.Now()
	for _, update := range updates {
		record, ok := byPosition[update.Position]
		if !ok {
			// Client state drift; tolerated.
			s.logger.Debug("Skipping unknown question position", "position", update.Position)
			continue
		}

		if record.FirstViewedAt == nil {
			viewedAt := now
			record.FirstViewedAt = &viewedAt
		}
		record.TimeSpent = update.TimeSpent
		record.MarkedForReview = update.MarkedForReview

		if update.UserAnswer != nil {
			label := *update.UserAnswer
			if !label.Valid() {
				s.logger.Warn("Skipping answer with invalid choice label",
					"position", update.Position, "label", label)
				continue
			}
			answeredAt := now
			record.UserAnswer = &label
			record.AnsweredAt = &answeredAt
			correct := label == record.Question.CorrectAnswer
			record.IsCorrect = &correct
		}

		if err := txRepo.Answer().Update(ctx, record); err != nil {
			return fmt.Errorf("failed to update answer record at position %d: %w", update.Position, err)
		}
	}
	return nil
}

func newActivity(sessionID uuid.UUID, kind models.ActivityKind, at time.Time, metadata map[string]interface{}) *models.ActivityEvent {
	event := &models.ActivityEvent{
		SessionID: sessionID,
		Kind:      kind,
		Timestamp: at,
	}
	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			event.Metadata = datatypes.JSON(raw)
		}
	}
	return event
}

func summarizeCompleted(session *models.ExamSession) CompletedSessionSummary {
	scaled := 0
	if session.ScaledScore != nil {
		scaled = *session.ScaledScore
	}

	completedAt := session.StartedAt
	if session.CompletedAt != nil {
		completedAt = *session.CompletedAt
	}

	return CompletedSessionSummary{
		SessionID:        session.SessionID,
		CompletedAt:      completedAt,
		ScaledScore:      scaled,
		Passed:           session.Passed(),
		PerformanceLevel: PerformanceLevel(scaled),
		CorrectAnswers:   session.CorrectAnswers,
		TotalQuestions:   session.TotalQuestions,
		Accuracy:         roundOneDecimal(session.Percentage()),
		TimeSpent:        session.TimeSpent,
	}
}

// publishEvent mirrors an audit event to the external stream. Failures are
// logged and swallowed; the session state is already durable.
func (s *sessionService) publishEvent(ctx context.Context, eventType events.EventType, data interface{}) {
	event := &events.SessionEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: s.clock.Now(),
		Source:    "exam-service",
		Version:   "1.0",
		Data:      data,
	}
	if err := s.publisher.PublishSessionEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish session event", "event_type", eventType, "error", err)
	}
}
