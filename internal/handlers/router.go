package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eppp-prep/exam-service/internal/repositories"
	"github.com/eppp-prep/exam-service/internal/services"
	"github.com/eppp-prep/exam-service/internal/utils"
)

type HandlerManager struct {
	sessionHandler  *SessionHandler
	resultsHandler  *ResultsHandler
	questionHandler *QuestionHandler
	repo            repositories.Repository
}

func NewHandlerManager(
	sessions services.SessionService,
	reports services.ReportService,
	questions services.QuestionService,
	repo repositories.Repository,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		sessionHandler:  NewSessionHandler(sessions, logger),
		resultsHandler:  NewResultsHandler(sessions, reports, logger),
		questionHandler: NewQuestionHandler(questions, logger),
		repo:            repo,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.StartSession)
			sessions.GET("/check", hm.sessionHandler.CheckActiveSession)
			sessions.GET("/:id", hm.sessionHandler.ResumeSession)
			sessions.POST("/:id/pause", hm.sessionHandler.PauseSession)
			sessions.POST("/:id/autosave", hm.sessionHandler.Autosave)
			sessions.POST("/:id/submit", hm.sessionHandler.SubmitSession)

			sessions.PATCH("/:id/questions/:question_id/category", hm.questionHandler.CorrectQuestionCategory)
		}

		results := v1.Group("/results")
		{
			results.GET("", hm.resultsHandler.ListResults)
			results.GET("/:id/report", hm.resultsHandler.GetReport)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", hm.questionHandler.ListCategories)
			categories.POST("", hm.questionHandler.CreateCategory)
			categories.DELETE("/:category_id", hm.questionHandler.DeleteCategory)
		}

		questions := v1.Group("/questions")
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.GET("/:question_id", hm.questionHandler.GetQuestion)
		}
	}
}

// HealthCheck reports service and database liveness.
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	if err := hm.repo.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
