package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eppp-prep/exam-service/internal/services"
	"github.com/eppp-prep/exam-service/internal/utils"
)

// SessionHandler exposes the exam session lifecycle over HTTP. It is thin
// plumbing: parsing, delegation, status mapping.
type SessionHandler struct {
	BaseHandler
	sessions services.SessionService
}

func NewSessionHandler(sessions services.SessionService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler: NewBaseHandler(logger),
		sessions:    sessions,
	}
}

// StartSession handles POST /sessions
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Code: "validation_failed"})
		return
	}

	state, err := h.sessions.Start(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, state)
}

// ResumeSession handles GET /sessions/:id
func (h *SessionHandler) ResumeSession(c *gin.Context) {
	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	state, err := h.sessions.Resume(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// PauseSession handles POST /sessions/:id/pause
func (h *SessionHandler) PauseSession(c *gin.Context) {
	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	session, err := h.sessions.Pause(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Autosave handles POST /sessions/:id/autosave
func (h *SessionHandler) Autosave(c *gin.Context) {
	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	var req services.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Code: "validation_failed"})
		return
	}

	if err := h.sessions.Autosave(c.Request.Context(), sessionID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "progress saved"})
}

// SubmitSession handles POST /sessions/:id/submit
func (h *SessionHandler) SubmitSession(c *gin.Context) {
	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	var req services.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Code: "validation_failed"})
		return
	}

	result, err := h.sessions.Submit(c.Request.Context(), sessionID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CheckActiveSession handles GET /sessions/check
func (h *SessionHandler) CheckActiveSession(c *gin.Context) {
	check, err := h.sessions.CheckActive(c.Request.Context(), c.Query("fingerprint"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, check)
}
