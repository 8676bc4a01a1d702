package services

import (
	"github.com/eppp-prep/exam-service/internal/models"
)

// sessionTransitions is the complete lifecycle. Terminal statuses have no
// outgoing edges; anything absent from the table is forbidden.
var sessionTransitions = map[models.SessionStatus][]models.SessionStatus{
	models.SessionInProgress: {
		models.SessionPaused,
		models.SessionCompleted,
		models.SessionExpired,
		models.SessionAbandoned,
	},
	models.SessionPaused: {
		models.SessionInProgress,
		models.SessionCompleted,
		models.SessionExpired,
		models.SessionAbandoned,
	},
}

// CanTransition reports whether the lifecycle allows moving from one status
// to another.
func CanTransition(from, to models.SessionStatus) bool {
	for _, allowed := range sessionTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns an InvalidTransitionError when the move is not
// allowed, with the action name used in the error text.
func ValidateTransition(from, to models.SessionStatus, action string) error {
	if CanTransition(from, to) {
		return nil
	}
	return &InvalidTransitionError{From: string(from), Action: action}
}
