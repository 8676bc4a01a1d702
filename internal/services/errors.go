package services

import (
	"errors"
	"fmt"

	playvalidator "github.com/go-playground/validator/v10"
)

// Service errors
var (
	ErrSessionNotFound         = errors.New("session not found")
	ErrSessionExpired          = errors.New("session time has expired")
	ErrSessionNotActive        = errors.New("session is not active")
	ErrSessionAlreadyCompleted = errors.New("session is already completed")
	ErrSessionNotCompleted     = errors.New("session is not completed")
	ErrConcurrentModification  = errors.New("session is being modified by another request")

	ErrQuestionNotFound = errors.New("question not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInUse    = errors.New("category still has questions assigned")

	ErrInvalidAnswer    = errors.New("invalid answer choice")
	ErrValidationFailed = errors.New("validation failed")
)

// InsufficientQuestionsError reports a category whose active question pool is
// smaller than its sampling quota. Sampling is all-or-nothing: the error names
// the first deficient category in ascending id order.
type InsufficientQuestionsError struct {
	CategoryID   uint
	CategoryName string
	Needed       int
	Available    int
}

func (e *InsufficientQuestionsError) Error() string {
	return fmt.Sprintf("category %q needs %d questions but only %d are available",
		e.CategoryName, e.Needed, e.Available)
}

// InvalidTransitionError reports a session state transition that the lifecycle
// does not allow.
type InvalidTransitionError struct {
	From   string
	Action string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a session in status %q", e.Action, e.From)
}

// classifyValidationError wraps a request validation failure. A rejected
// choice label surfaces under ErrInvalidAnswer; everything else under
// ErrValidationFailed. The field details stay reachable through the chain.
func classifyValidationError(err error) error {
	var fieldErrs playvalidator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fieldErr := range fieldErrs {
			if fieldErr.Tag() == "choice_label" {
				return fmt.Errorf("%w: %w", ErrInvalidAnswer, err)
			}
		}
	}
	return fmt.Errorf("%w: %w", ErrValidationFailed, err)
}

// Helper functions for error checking

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrCategoryNotFound)
}

func IsSessionExpiredError(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

func IsConflictError(err error) bool {
	if errors.Is(err, ErrSessionAlreadyCompleted) ||
		errors.Is(err, ErrConcurrentModification) ||
		errors.Is(err, ErrCategoryInUse) {
		return true
	}
	var transition *InvalidTransitionError
	return errors.As(err, &transition)
}

func IsValidationError(err error) bool {
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrInvalidAnswer) {
		return true
	}
	var insufficient *InsufficientQuestionsError
	return errors.As(err, &insufficient)
}
