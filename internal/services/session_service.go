package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/eppp-prep/exam-service/internal/cache"
	"github.com/eppp-prep/exam-service/internal/config"
	"github.com/eppp-prep/exam-service/internal/events"
	"github.com/eppp-prep/exam-service/internal/models"
	"github.com/eppp-prep/exam-service/internal/repositories"
	"github.com/eppp-prep/exam-service/internal/validator"
)

const (
	SubmissionManual  = "manual"
	SubmissionTimeout = "timeout"
)

type sessionService struct {
	repo      repositories.Repository
	sampler   *StratifiedSampler
	cache     cache.SessionCache
	publisher events.EventPublisher
	clock     Clock
	examCfg   config.ExamConfig
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSessionService(
	repo repositories.Repository,
	sampler *StratifiedSampler,
	sessionCache cache.SessionCache,
	publisher events.EventPublisher,
	clock Clock,
	examCfg config.ExamConfig,
	logger *slog.Logger,
	v *validator.Validator,
) SessionService {
	return &sessionService{
		repo:      repo,
		sampler:   sampler,
		cache:     sessionCache,
		publisher: publisher,
		clock:     clock,
		examCfg:   examCfg,
		logger:    logger,
		validator: v,
	}
}

// ===== LIFECYCLE OPERATIONS =====

func (s *sessionService) Start(ctx context.Context, req *StartSessionRequest) (*SessionState, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, classifyValidationError(err)
	}

	questions, err := s.sampler.Sample(ctx, s.examCfg.TotalQuestions)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session := &models.ExamSession{
		SessionID:          uuid.New(),
		BrowserFingerprint: req.BrowserFingerprint,
		Status:             models.SessionInProgress,
		StartedAt:          now,
		Duration:           s.examCfg.DurationSeconds,
		CurrentQuestion:    1,
		TotalQuestions:     len(questions),
		PassingScore:       s.examCfg.PassingScore,
	}

	records := make([]*models.AnswerRecord, len(questions))
	for i, question := range questions {
		records[i] = &models.AnswerRecord{
			SessionID:  session.SessionID,
			QuestionID: question.ID,
			Position:   i + 1,
		}
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Session().Create(ctx, session); err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		if err := txRepo.Answer().CreateBatch(ctx, records); err != nil {
			return fmt.Errorf("failed to create answer records: %w", err)
		}
		return txRepo.Activity().Append(ctx, newActivity(session.SessionID, models.ActivityStart, now, map[string]interface{}{
			"total_questions": session.TotalQuestions,
			"exam_duration":   session.Duration,
		}))
	})
	if err != nil {
		return nil, err
	}

	if req.BrowserFingerprint != nil {
		ttl := time.Duration(session.Duration) * time.Second
		if cacheErr := s.cache.SetActive(ctx, *req.BrowserFingerprint, session.SessionID, ttl); cacheErr != nil {
			s.logger.Warn("Failed to cache active session", "session_id", session.SessionID, "error", cacheErr)
		}
	}

	s.publishEvent(ctx, events.EventSessionStarted, &events.SessionStartedEvent{
		SessionID:      session.SessionID,
		TotalQuestions: session.TotalQuestions,
		Duration:       session.Duration,
		StartedAt:      now,
		HasFingerprint: req.BrowserFingerprint != nil,
	})

	s.logger.Info("Started exam session",
		"session_id", session.SessionID,
		"total_questions", session.TotalQuestions)

	state, err := s.loadState(ctx, session)
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (s *sessionService) Resume(ctx context.Context, sessionID uuid.UUID) (*SessionState, error) {
	var session *models.ExamSession
	var expired, resumed bool

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		var err error
		session, err = s.getSessionTxForUpdate(ctx, txRepo, sessionID)
		if err != nil {
			return err
		}

		switch {
		case session.Status == models.SessionCompleted:
			return ErrSessionAlreadyCompleted
		case session.Status.IsTerminal():
			return &InvalidTransitionError{From: string(session.Status), Action: "resume"}
		}

		// Lazy expiry: the forced transition happens the moment an exhausted
		// time budget is observed.
		if session.IsExpired() {
			session.Status = models.SessionExpired
			if err := txRepo.Session().Update(ctx, session); err != nil {
				return fmt.Errorf("failed to expire session: %w", err)
			}
			expired = true
			return nil
		}

		if session.Status == models.SessionPaused {
			now := s.clock.Now()
			session.Status = models.SessionInProgress
			session.PausedAt = nil
			if err := txRepo.Session().Update(ctx, session); err != nil {
				return fmt.Errorf("failed to resume session: %w", err)
			}
			resumed = true
			return txRepo.Activity().Append(ctx, newActivity(sessionID, models.ActivityResume, now, nil))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if expired {
		s.announceExpired(ctx, session)
		return nil, ErrSessionExpired
	}
	if resumed {
		s.publishEvent(ctx, events.EventSessionResumed, map[string]interface{}{
			"session_id":     sessionID,
			"remaining_time": session.RemainingTime(),
		})
	}

	return s.loadState(ctx, session)
}

func (s *sessionService) Pause(ctx context.Context, sessionID uuid.UUID) (*models.ExamSession, error) {
	var session *models.ExamSession
	now := s.clock.Now()

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		var err error
		session, err = s.getSessionTxForUpdate(ctx, txRepo, sessionID)
		if err != nil {
			return err
		}
		if err := ValidateTransition(session.Status, models.SessionPaused, "pause"); err != nil {
			return err
		}

		session.Status = models.SessionPaused
		session.PausedAt = &now
		if err := txRepo.Session().Update(ctx, session); err != nil {
			return fmt.Errorf("failed to pause session: %w", err)
		}
		return txRepo.Activity().Append(ctx, newActivity(sessionID, models.ActivityPause, now, nil))
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.EventSessionPaused, map[string]interface{}{
		"session_id":     sessionID,
		"paused_at":      now,
		"remaining_time": session.RemainingTime(),
	})

	return session, nil
}

// ===== AUTOSAVE AND SUBMIT =====

func (s *sessionService) Autosave(ctx context.Context, sessionID uuid.UUID, req *SaveRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return classifyValidationError(err)
	}

	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		// The locked read keeps a racing submit from completing the session
		// between the status check and the writes below.
		session, err := s.getSessionTxForUpdate(ctx, txRepo, sessionID)
		if err != nil {
			return err
		}
		if session.Status == models.SessionCompleted {
			return ErrSessionAlreadyCompleted
		}
		if !session.Status.IsActive() {
			return ErrSessionNotActive
		}

		records, err := txRepo.Answer().GetBySession(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to load answer records: %w", err)
		}

		applyProgress(session, req.Progress)
		if err := txRepo.Session().Update(ctx, session); err != nil {
			return fmt.Errorf("failed to update session progress: %w", err)
		}

		return s.applyAnswerBatch(ctx, txRepo, records, req.Answers)
	})
}

func (s *sessionService) Submit(ctx context.Context, sessionID uuid.UUID, req *SaveRequest) (*SubmitResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, classifyValidationError(err)
	}

	var session *models.ExamSession
	var summary *ScoreSummary

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		var err error
		session, err = s.getSessionTxForUpdate(ctx, txRepo, sessionID)
		if err != nil {
			return err
		}
		if session.Status == models.SessionCompleted {
			return ErrSessionAlreadyCompleted
		}
		if !session.Status.IsActive() {
			return &InvalidTransitionError{From: string(session.Status), Action: "submit"}
		}

		// Row locks serialize this submit against concurrent autosaves of
		// the same session.
		records, err := txRepo.Answer().GetBySessionForUpdate(ctx, sessionID)
		if err != nil {
			if repositories.IsLockNotAvailableError(err) {
				return ErrConcurrentModification
			}
			return fmt.Errorf("failed to lock answer records: %w", err)
		}

		applyProgress(session, req.Progress)
		if err := s.applyAnswerBatch(ctx, txRepo, records, req.Answers); err != nil {
			return err
		}

		correct := 0
		for _, record := range records {
			if record.IsCorrect != nil && *record.IsCorrect {
				correct++
			}
		}

		now := s.clock.Now()
		submissionType := SubmissionManual
		if session.RemainingTime() == 0 {
			submissionType = SubmissionTimeout
		}

		scaled := ScoreFromCounts(correct, session.TotalQuestions)
		session.Status = models.SessionCompleted
		session.CompletedAt = &now
		session.CorrectAnswers = correct
		session.ScaledScore = &scaled

		if err := txRepo.Session().Update(ctx, session); err != nil {
			return fmt.Errorf("failed to finalize session: %w", err)
		}

		if err := txRepo.Activity().Append(ctx, newActivity(sessionID, models.ActivitySubmit, now, map[string]interface{}{
			"submission_type": submissionType,
			"correct_answers": correct,
			"scaled_score":    scaled,
		})); err != nil {
			return err
		}

		summary = &ScoreSummary{
			SessionID:        sessionID,
			CorrectAnswers:   correct,
			TotalQuestions:   session.TotalQuestions,
			Percentage:       session.Percentage(),
			ScaledScore:      scaled,
			PassingScore:     session.PassingScore,
			Passed:           session.Passed(),
			PerformanceLevel: PerformanceLevel(scaled),
			SubmissionType:   submissionType,
			TimeSpent:        session.TimeSpent,
			CompletedAt:      now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if session.BrowserFingerprint != nil {
		if cacheErr := s.cache.DeleteActive(ctx, *session.BrowserFingerprint); cacheErr != nil {
			s.logger.Warn("Failed to drop session cache entry", "session_id", sessionID, "error", cacheErr)
		}
	}

	s.publishEvent(ctx, events.EventSessionSubmitted, &events.SessionSubmittedEvent{
		SessionID:      sessionID,
		SubmittedAt:    summary.CompletedAt,
		SubmissionType: summary.SubmissionType,
		CorrectAnswers: summary.CorrectAnswers,
		ScaledScore:    summary.ScaledScore,
		Passed:         summary.Passed,
	})

	s.logger.Info("Submitted exam session",
		"session_id", sessionID,
		"scaled_score", summary.ScaledScore,
		"passed", summary.Passed,
		"submission_type", summary.SubmissionType)

	return &SubmitResult{Session: session, Score: summary}, nil
}

// ===== LOOKUPS =====

func (s *sessionService) CheckActive(ctx context.Context, fingerprint string) (*ActiveSessionCheck, error) {
	none := &ActiveSessionCheck{HasActiveSession: false}
	if fingerprint == "" {
		return none, nil
	}

	session, err := s.findActiveSession(ctx, fingerprint)
	if err != nil {
		return nil, err
	}
	if session == nil || session.IsExpired() {
		return none, nil
	}

	return &ActiveSessionCheck{
		HasActiveSession: true,
		SessionID:        &session.SessionID,
		Status:           session.Status,
		RemainingTime:    session.RemainingTime(),
		CurrentQuestion:  session.CurrentQuestion,
	}, nil
}

func (s *sessionService) ListCompleted(ctx context.Context, filters repositories.SessionFilters) (*SessionListResult, error) {
	if filters.Limit <= 0 {
		filters.Limit = 20
	}
	if filters.Limit > 100 {
		filters.Limit = 100
	}

	sessions, total, err := s.repo.Session().ListCompleted(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed sessions: %w", err)
	}

	results := make([]CompletedSessionSummary, 0, len(sessions))
	for _, session := range sessions {
		results = append(results, summarizeCompleted(session))
	}

	return &SessionListResult{
		Results: results,
		Total:   total,
		Limit:   filters.Limit,
		Offset:  filters.Offset,
	}, nil
}
