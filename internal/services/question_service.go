package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/eppp-prep/exam-service/internal/events"
	"github.com/eppp-prep/exam-service/internal/models"
	"github.com/eppp-prep/exam-service/internal/repositories"
	"github.com/eppp-prep/exam-service/internal/validator"
)

type questionService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	clock     Clock
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(
	repo repositories.Repository,
	publisher events.EventPublisher,
	clock Clock,
	logger *slog.Logger,
	v *validator.Validator,
) QuestionService {
	return &questionService{
		repo:      repo,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
		validator: v,
	}
}

func (s *questionService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.repo.Category().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	for _, category := range categories {
		count, err := s.repo.Category().CountActiveQuestions(ctx, category.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count questions for category %d: %w", category.ID, err)
		}
		category.ActiveQuestionCount = int(count)
	}
	return categories, nil
}

func (s *questionService) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, classifyValidationError(err)
	}

	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.repo.Category().Create(ctx, category); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: category %q already exists", ErrValidationFailed, req.Name)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("Created category", "category_id", category.ID, "name", category.Name)
	return category, nil
}

func (s *questionService) DeleteCategory(ctx context.Context, id uint) error {
	if _, err := s.repo.Category().GetByID(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to load category: %w", err)
	}

	if err := s.repo.Category().Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrCategoryInUse) {
			return ErrCategoryInUse
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.logger.Info("Deleted category", "category_id", id)
	return nil
}

func (s *questionService) GetQuestion(ctx context.Context, id uint) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to load question: %w", err)
	}
	return question, nil
}

func (s *questionService) CreateQuestion(ctx context.Context, req *CreateQuestionRequest) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, classifyValidationError(err)
	}

	if _, err := s.repo.Category().GetByID(ctx, req.CategoryID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}

	question := &models.Question{
		CategoryID:    req.CategoryID,
		QuestionText:  req.QuestionText,
		ChoiceA:       req.ChoiceA,
		ChoiceB:       req.ChoiceB,
		ChoiceC:       req.ChoiceC,
		ChoiceD:       req.ChoiceD,
		CorrectAnswer: req.CorrectAnswer,
		Explanation:   req.Explanation,
		IsActive:      true,
	}
	if err := s.repo.Question().Create(ctx, question); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: identical question already exists", ErrValidationFailed)
		}
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Created question", "question_id", question.ID, "category_id", question.CategoryID)
	return question, nil
}

func (s *questionService) CorrectQuestionCategory(ctx context.Context, sessionID uuid.UUID, questionID, newCategoryID uint) (*models.Question, error) {
	question, err := s.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}

	category, err := s.repo.Category().GetByID(ctx, newCategoryID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}

	oldCategoryID := question.CategoryID
	now := s.clock.Now()

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Question().UpdateCategory(ctx, questionID, newCategoryID); err != nil {
			return fmt.Errorf("failed to reassign question category: %w", err)
		}
		return txRepo.Activity().Append(ctx, newActivity(sessionID, models.ActivityCategoryCorrection, now, map[string]interface{}{
			"question_id":     questionID,
			"old_category_id": oldCategoryID,
			"new_category_id": newCategoryID,
			"new_category":    category.Name,
		}))
	})
	if err != nil {
		return nil, err
	}

	event := &events.SessionEvent{
		ID:        uuid.New().String(),
		Type:      events.EventCategoryCorrected,
		Timestamp: now,
		Source:    "exam-service",
		Version:   "1.0",
		Data: &events.CategoryCorrectedEvent{
			QuestionID:    questionID,
			OldCategoryID: oldCategoryID,
			NewCategoryID: newCategoryID,
			NewCategory:   category.Name,
		},
	}
	if err := s.publisher.PublishSessionEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish category correction event", "question_id", questionID, "error", err)
	}

	s.logger.Info("Corrected question category",
		"question_id", questionID,
		"old_category_id", oldCategoryID,
		"new_category_id", newCategoryID)

	question.CategoryID = newCategoryID
	question.Category = *category
	return question, nil
}
