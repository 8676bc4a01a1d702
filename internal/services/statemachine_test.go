package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eppp-prep/exam-service/internal/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    models.SessionStatus
		to      models.SessionStatus
		allowed bool
	}{
		{models.SessionInProgress, models.SessionPaused, true},
		{models.SessionInProgress, models.SessionCompleted, true},
		{models.SessionInProgress, models.SessionExpired, true},
		{models.SessionInProgress, models.SessionAbandoned, true},
		{models.SessionPaused, models.SessionInProgress, true},
		{models.SessionPaused, models.SessionCompleted, true},
		{models.SessionPaused, models.SessionExpired, true},

		{models.SessionCompleted, models.SessionInProgress, false},
		{models.SessionCompleted, models.SessionExpired, false},
		{models.SessionExpired, models.SessionInProgress, false},
		{models.SessionExpired, models.SessionCompleted, false},
		{models.SessionAbandoned, models.SessionInProgress, false},
		{models.SessionInProgress, models.SessionInProgress, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestValidateTransition(t *testing.T) {
	assert.NoError(t, ValidateTransition(models.SessionInProgress, models.SessionPaused, "pause"))

	err := ValidateTransition(models.SessionCompleted, models.SessionPaused, "pause")
	require.Error(t, err)

	var transition *InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, "completed", transition.From)
	assert.Equal(t, "pause", transition.Action)
	assert.True(t, IsConflictError(err))
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, models.SessionInProgress.IsActive())
	assert.True(t, models.SessionPaused.IsActive())
	assert.False(t, models.SessionCompleted.IsActive())

	assert.True(t, models.SessionCompleted.IsTerminal())
	assert.True(t, models.SessionExpired.IsTerminal())
	assert.True(t, models.SessionAbandoned.IsTerminal())
	assert.False(t, models.SessionInProgress.IsTerminal())
	assert.False(t, models.SessionPaused.IsTerminal())
}
