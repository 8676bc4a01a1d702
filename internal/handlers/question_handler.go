package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eppp-prep/exam-service/internal/services"
	"github.com/eppp-prep/exam-service/internal/utils"
)

// QuestionHandler covers the administrative bank operations used by the
// reporting site.
type QuestionHandler struct {
	BaseHandler
	questions services.QuestionService
}

func NewQuestionHandler(questions services.QuestionService, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler: NewBaseHandler(logger),
		questions:   questions,
	}
}

// ListCategories handles GET /categories
func (h *QuestionHandler) ListCategories(c *gin.Context) {
	categories, err := h.questions.ListCategories(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// CreateCategory handles POST /categories
func (h *QuestionHandler) CreateCategory(c *gin.Context) {
	var req services.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Code: "validation_failed"})
		return
	}

	category, err := h.questions.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// DeleteCategory handles DELETE /categories/:category_id
func (h *QuestionHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseUintParam(c, "category_id")
	if !ok {
		return
	}

	if err := h.questions.DeleteCategory(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "category deleted"})
}

// GetQuestion handles GET /questions/:question_id
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id, ok := parseUintParam(c, "question_id")
	if !ok {
		return
	}

	question, err := h.questions.GetQuestion(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// CreateQuestion handles POST /questions
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Code: "validation_failed"})
		return
	}

	question, err := h.questions.CreateQuestion(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

type correctCategoryRequest struct {
	CategoryID uint `json:"category_id" binding:"required"`
}

// CorrectQuestionCategory handles PATCH /sessions/:id/questions/:question_id/category
func (h *QuestionHandler) CorrectQuestionCategory(c *gin.Context) {
	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}
	questionID, ok := parseUintParam(c, "question_id")
	if !ok {
		return
	}

	var req correctCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "category_id is required", Code: "validation_failed"})
		return
	}

	question, err := h.questions.CorrectQuestionCategory(c.Request.Context(), sessionID, questionID, req.CategoryID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}
