package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/eppp-prep/exam-service/internal/errors"
	"github.com/eppp-prep/exam-service/internal/services"
	"github.com/eppp-prep/exam-service/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse is the envelope for all error replies.
type ErrorResponse struct {
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse wraps replies that carry no dedicated payload type.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides shared logging and error translation for all handlers.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// handleServiceError translates service errors into HTTP status codes. All
// business rules live in the services; this mapping is the only HTTP-aware
// error logic.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case services.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error(), Code: "not_found"})
	case services.IsSessionExpiredError(err):
		c.JSON(http.StatusGone, ErrorResponse{Message: err.Error(), Code: "session_expired"})
	case errors.Is(err, services.ErrSessionAlreadyCompleted):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error(), Code: "already_completed"})
	case errors.Is(err, services.ErrConcurrentModification):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error(), Code: "concurrent_modification"})
	case errors.Is(err, services.ErrSessionNotActive), errors.Is(err, services.ErrSessionNotCompleted):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error(), Code: "invalid_state"})
	case services.IsConflictError(err):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error(), Code: "invalid_state"})
	case services.IsValidationError(err):
		response := ErrorResponse{Message: err.Error(), Code: "validation_failed"}
		if details := apperrors.ToValidationErrors(err); len(details) > 0 {
			response.Details = details
		}
		c.JSON(http.StatusBadRequest, response)
	default:
		h.logger.LogError(err, "Unhandled service error",
			"method", c.Request.Method,
			"path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
	}
}

// parseSessionID reads the :id path parameter as a session UUID.
func parseSessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid session id", Code: "validation_failed"})
		return uuid.Nil, false
	}
	return id, true
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid " + name, Code: "validation_failed"})
		return 0, false
	}
	return uint(value), true
}

func parseQueryInt(c *gin.Context, name string, defaultValue int) int {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}
