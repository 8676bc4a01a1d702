package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eppp-prep/exam-service/internal/repositories"
	"github.com/eppp-prep/exam-service/internal/services"
	"github.com/eppp-prep/exam-service/internal/utils"
)

// ResultsHandler serves the completed-exam browsing and reporting surface.
type ResultsHandler struct {
	BaseHandler
	sessions services.SessionService
	reports  services.ReportService
}

func NewResultsHandler(sessions services.SessionService, reports services.ReportService, logger utils.Logger) *ResultsHandler {
	return &ResultsHandler{
		BaseHandler: NewBaseHandler(logger),
		sessions:    sessions,
		reports:     reports,
	}
}

// ListResults handles GET /results
func (h *ResultsHandler) ListResults(c *gin.Context) {
	filters := repositories.SessionFilters{
		Search:    c.Query("search"),
		SortBy:    c.DefaultQuery("sort_by", "date"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
		Limit:     parseQueryInt(c, "limit", 20),
		Offset:    parseQueryInt(c, "offset", 0),
	}

	if raw := c.Query("date_from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filters.DateFrom = &t
		}
	}
	if raw := c.Query("date_to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filters.DateTo = &t
		}
	}

	result, err := h.sessions.ListCompleted(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetReport handles GET /results/:id/report
func (h *ResultsHandler) GetReport(c *gin.Context) {
	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	report, err := h.reports.GetReport(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
